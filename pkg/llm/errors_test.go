package llm

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error_WithStatusCodeAndModel(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limited",
		StatusCode: 429,
		Model:      "gemini-2.5-flash-lite",
	}

	result := err.Error()
	for _, want := range []string{"rate_limit", "HTTP 429", "model=gemini-2.5-flash-lite", "rate limited"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected error message to contain %q, got: %s", want, result)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError(ErrorTypeEndpoint, "server error", true, cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find the cause")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"openai 429", errors.New("error, status code: 429, message: Rate limit reached"), ErrorTypeRateLimit, true},
		{"anthropic rate_limit_error", errors.New("anthropic api error type: rate_limit_error"), ErrorTypeRateLimit, true},
		{"gemini resource exhausted", errors.New("Error 429, Message: Resource has been exhausted, Status: RESOURCE_EXHAUSTED"), ErrorTypeRateLimit, true},
		{"quota", errors.New("You exceeded your current quota"), ErrorTypeRateLimit, true},
		{"401", errors.New("status code: 401"), ErrorTypeAuth, false},
		{"invalid key", errors.New("API key not valid. Please pass a valid API key."), ErrorTypeAuth, false},
		{"model missing", errors.New("The model `gpt-9` does not exist"), ErrorTypeModel, false},
		{"404", errors.New("status code: 404"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), ErrorTypeEndpoint, true},
		{"deadline", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
		{"canceled", errors.New("context canceled"), ErrorTypeEndpoint, false},
		{"503", errors.New("status code: 503"), ErrorTypeEndpoint, true},
		{"overloaded", errors.New("overloaded_error: Overloaded"), ErrorTypeEndpoint, true},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Type != tt.wantType {
				t.Errorf("ClassifyError(%q).Type = %s, want %s", tt.err, got.Type, tt.wantType)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("ClassifyError(%q).Retryable = %v, want %v", tt.err, got.Retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("expected classified error to wrap the original")
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestClassifyError_KeepsExisting(t *testing.T) {
	original := NewError(ErrorTypeModel, "model not found", false, nil)
	wrapped := fmt.Errorf("planning: %w", original)

	if got := ClassifyError(wrapped); got != original {
		t.Errorf("expected the existing *Error to be returned, got %v", got)
	}
}

func TestClassifyWithStatus_PrefersSDKStatus(t *testing.T) {
	got := classifyWithStatus(errors.New("too busy"), 429)
	if got.Type != ErrorTypeRateLimit || got.StatusCode != 429 {
		t.Errorf("expected rate_limit with status 429, got %s %d", got.Type, got.StatusCode)
	}
}

func TestIsRateLimited(t *testing.T) {
	rl := NewError(ErrorTypeRateLimit, "rate limited", true, nil)

	if !IsRateLimited(rl) {
		t.Errorf("expected rate limit error to be detected")
	}
	if !IsRateLimited(fmt.Errorf("sql generation: %w", rl)) {
		t.Errorf("expected wrapped rate limit error to be detected")
	}
	if IsRateLimited(errors.New("429")) {
		t.Errorf("expected untyped error not to count as rate limited")
	}
	if IsRateLimited(nil) {
		t.Errorf("expected nil not to count as rate limited")
	}
}

func TestGetErrorType(t *testing.T) {
	if GetErrorType(nil) != ErrorTypeNone {
		t.Errorf("expected ErrorTypeNone for nil")
	}
	if GetErrorType(errors.New("x")) != ErrorTypeUnknown {
		t.Errorf("expected ErrorTypeUnknown for untyped error")
	}
	if GetErrorType(NewError(ErrorTypeAuth, "", false, nil)) != ErrorTypeAuth {
		t.Errorf("expected ErrorTypeAuth")
	}
}
