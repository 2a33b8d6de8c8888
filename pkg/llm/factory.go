package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/config"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
	"github.com/ekaya-inc/aria-engine/pkg/retry"
)

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// NewProviderClient creates the bare provider client named by cfg.Provider.
func NewProviderClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	clientCfg := &Config{
		Endpoint:  cfg.Endpoint,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(clientCfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(clientCfg, logger)
	case ProviderGemini:
		return NewGeminiClient(ctx, clientCfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// NewClientFromConfig creates the configured provider client wrapped in a ResilientClient.
func NewClientFromConfig(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*ResilientClient, error) {
	inner, err := NewProviderClient(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	retryCfg := retry.DefaultConfig()
	if cfg.RetryAttempts >= 0 {
		retryCfg.MaxRetries = cfg.RetryAttempts
	}

	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:  cfg.CircuitBreakerTrips,
		ResetAfter: cfg.CircuitBreakerTimeout,
		OnStateChange: func(from, to CircuitState) {
			metrics.LLMCircuitState.Set(float64(to))
			logger.Warn("LLM circuit breaker state changed",
				zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	logger.Info("LLM client configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", inner.GetModel()),
		zap.String("endpoint", inner.GetEndpoint()))

	return NewResilientClient(inner, retryCfg, breaker, logger), nil
}
