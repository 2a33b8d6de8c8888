package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient speaks the chat completions API. It also serves any
// OpenAI-compatible server (vLLM, Ollama, LM Studio, Azure gateways) via Endpoint.
type OpenAIClient struct {
	api       *openai.Client
	endpoint  string
	model     string
	maxTokens int
	logger    *zap.Logger
}

func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		apiCfg.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIClient{
		api:       openai.NewClientWithConfig(apiCfg),
		endpoint:  apiCfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("llm.openai"),
	}, nil
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (*GenerateResponseResult, error) {
	req := openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            chatMessages(prompt, systemMessage),
		Temperature:         float32(temperature),
		MaxCompletionTokens: c.maxTokens,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("Chat completion failed", zap.String("model", c.model), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, c.parseError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorTypeEmpty, "no choices in response", false, nil)
	}

	c.logger.Debug("Chat completion",
		zap.Int("prompt_len", len(prompt)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Duration("elapsed", elapsed))

	return &GenerateResponseResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

func chatMessages(prompt, systemMessage string) []openai.ChatCompletionMessage {
	var msgs []openai.ChatCompletionMessage
	if systemMessage != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemMessage})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
}

func (c *OpenAIClient) GetModel() string    { return c.model }
func (c *OpenAIClient) GetEndpoint() string { return c.endpoint }

// parseError pulls the HTTP status out of the SDK's error types so the
// resilient client can decide on retries.
func (c *OpenAIClient) parseError(err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		status int
	)
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
	} else if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}

	llmErr := classifyWithStatus(err, status)
	llmErr.Model, llmErr.Endpoint = c.model, c.endpoint
	return llmErr
}
