package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/retry"
)

// ResilientClient wraps a provider client with retries and a circuit breaker.
type ResilientClient struct {
	inner   LLMClient
	retry   *retry.Config
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewResilientClient wraps inner. A nil retryCfg uses retry.DefaultConfig().
func NewResilientClient(inner LLMClient, retryCfg *retry.Config, breaker *CircuitBreaker, logger *zap.Logger) *ResilientClient {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCircuitBreakerConfig())
	}
	return &ResilientClient{
		inner:   inner,
		retry:   retryCfg,
		breaker: breaker,
		logger:  logger.Named("llm.resilient"),
	}
}

// GenerateResponse retries transient failures (including rate limits) with backoff.
// When retries are exhausted the last classified *Error is returned unchanged.
func (r *ResilientClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (*GenerateResponseResult, error) {
	if err := r.breaker.Allow(); err != nil {
		return nil, err
	}

	var result *GenerateResponseResult
	attempt := 0
	err := retry.DoIfRetryable(ctx, r.retry, func() error {
		attempt++
		res, err := r.inner.GenerateResponse(ctx, prompt, systemMessage, temperature)
		if err != nil {
			classified := ClassifyError(err)
			if classified.Retryable {
				r.logger.Warn("LLM call failed, retrying",
					zap.Int("attempt", attempt),
					zap.String("error_type", string(classified.Type)),
					zap.Error(err))
			}
			return classified
		}
		result = res
		return nil
	})
	if err != nil {
		// Rate limits do not trip the breaker.
		if !IsRateLimited(err) {
			r.breaker.RecordFailure()
		}
		return nil, err
	}

	r.breaker.RecordSuccess()
	return result, nil
}

// GetModel returns the wrapped client's model.
func (r *ResilientClient) GetModel() string {
	return r.inner.GetModel()
}

// GetEndpoint returns the wrapped client's endpoint.
func (r *ResilientClient) GetEndpoint() string {
	return r.inner.GetEndpoint()
}

// Breaker exposes the circuit breaker for health reporting.
func (r *ResilientClient) Breaker() *CircuitBreaker {
	return r.breaker
}
