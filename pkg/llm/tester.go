package llm

import (
	"context"
	"fmt"
	"time"
)

// TestResult contains connection test results.
type TestResult struct {
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	Model          string    `json:"model"`
	ErrorType      ErrorType `json:"error_type,omitempty"`
	ResponseTimeMs int64     `json:"response_time_ms,omitempty"`
}

// ConnectionTester checks that the configured model answers.
type ConnectionTester interface {
	Test(ctx context.Context, client LLMClient) *TestResult
}

type connectionTester struct {
	timeout time.Duration
}

// NewConnectionTester creates a tester that gives the model timeout to respond.
func NewConnectionTester(timeout time.Duration) ConnectionTester {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &connectionTester{timeout: timeout}
}

// Test sends a trivial prompt and reports latency or a categorized failure.
func (t *connectionTester) Test(ctx context.Context, client LLMClient) *TestResult {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	_, err := client.GenerateResponse(ctx, "Say 'ok' and nothing else.", "", 0)
	elapsed := time.Since(start).Milliseconds()

	result := &TestResult{Model: client.GetModel(), ResponseTimeMs: elapsed}
	if err != nil {
		result.ErrorType = GetErrorType(ClassifyError(err))
		result.Message = describeFailure(result.ErrorType, err)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("LLM connection successful (model: %s, %dms)", client.GetModel(), elapsed)
	return result
}

func describeFailure(t ErrorType, err error) string {
	switch t {
	case ErrorTypeAuth:
		return "LLM: Invalid API key"
	case ErrorTypeModel:
		return "LLM: Model not found"
	case ErrorTypeRateLimit:
		return "LLM: Rate limited or quota exhausted"
	case ErrorTypeCircuit:
		return "LLM: Provider marked unavailable after repeated failures"
	case ErrorTypeEndpoint:
		return "LLM: Endpoint unreachable - check endpoint"
	default:
		return fmt.Sprintf("LLM: %v", err)
	}
}

// Ensure connectionTester implements ConnectionTester at compile time.
var _ ConnectionTester = (*connectionTester)(nil)
