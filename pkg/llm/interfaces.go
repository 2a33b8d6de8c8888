// Package llm provides hosted language model clients (OpenAI-compatible, Anthropic, Gemini).
package llm

import (
	"context"
)

// Config is what every provider client needs.
type Config struct {
	Endpoint  string // base URL; provider default when empty
	Model     string
	APIKey    string // optional for local OpenAI-compatible servers
	MaxTokens int    // completion cap; 0 leaves the provider default
}

// GenerateResponseResult is a completion plus token accounting.
type GenerateResponseResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMClient defines the interface for text completion.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse sends one prompt (with an optional system message) and returns the completion.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (*GenerateResponseResult, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure the provider clients implement LLMClient at compile time.
var (
	_ LLMClient = (*OpenAIClient)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
	_ LLMClient = (*GeminiClient)(nil)
	_ LLMClient = (*ResilientClient)(nil)
)
