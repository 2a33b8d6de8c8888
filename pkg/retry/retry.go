// Package retry retries transient warehouse and model failures with
// exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config bounds a retry loop. The loop ends after MaxRetries retries; elapsed
// time is not limited beyond the caller's context.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0..1

	// MaxSameErrorType stops retrying after this many consecutive failures of
	// the same kind (e.g. five 503s in a row). Zero disables the check.
	MaxSameErrorType int

	// OnRetry, when set, is called before each wait.
	OnRetry func(err error, wait time.Duration)
}

// DefaultConfig: 3 retries starting at 250ms, doubling up to 5s, 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       3,
		InitialDelay:     250 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 5,
	}
}

func (c *Config) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.InitialDelay
	exp.MaxInterval = c.MaxDelay
	exp.RandomizationFactor = c.JitterFactor
	if c.Multiplier >= 1 {
		exp.Multiplier = c.Multiplier
	}
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(max(c.MaxRetries, 0))), ctx)
}

// RetryableError lets an error decide its own retryability; llm.Error does.
type RetryableError interface {
	error
	IsRetryable() bool
}

// Lower-cased fragments of transient failures from HTTP APIs, network stacks
// and warehouse drivers.
var transientFragments = []string{
	"connection refused", "connection reset", "broken pipe", "no such host",
	"network is unreachable", "i/o timeout", "timeout", "timed out",
	"temporary failure", "too many connections",
	"429", "500", "502", "503", "504",
	"rate limit", "too many requests", "resource exhausted", "resource_exhausted",
	"service unavailable", "overloaded",
	// Postgres-family SQLSTATEs: serialization failure, admin shutdown, connection failure
	"sqlstate 40001", "sqlstate 57p01", "sqlstate 08006",
}

// IsRetryable reports whether err looks transient. An error implementing
// RetryableError anywhere in its chain has the final word.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	msg := strings.ToLower(err.Error())
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// errorKinds groups messages for the same-error escalation. First match wins;
// status codes are checked before the textual kinds.
var errorKinds = []struct {
	kind      string
	fragments []string
}{
	{"503", []string{"503"}},
	{"502", []string{"502"}},
	{"504", []string{"504"}},
	{"500", []string{"500"}},
	{"429", []string{"429"}},
	{"404", []string{"404"}},
	{"403", []string{"403"}},
	{"401", []string{"401"}},
	{"400", []string{"400"}},
	{"connection", []string{"connection refused", "connection reset"}},
	{"timeout", []string{"timeout", "timed out"}},
	{"broken_pipe", []string{"broken pipe"}},
	{"rate_limit", []string{"rate limit", "too many requests", "resource exhausted", "resource_exhausted"}},
}

func classifyErrorType(err error) string {
	if err == nil {
		return "nil"
	}
	msg := strings.ToLower(err.Error())
	for _, k := range errorKinds {
		for _, frag := range k.fragments {
			if strings.Contains(msg, frag) {
				return k.kind
			}
		}
	}
	return "unknown"
}

// DoIfRetryable runs fn until it succeeds, returns a non-retryable error,
// repeats the same kind of failure MaxSameErrorType times, or runs out of
// retries. A nil cfg means DefaultConfig. The last error is returned as is.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var (
		lastKind string
		streak   int
	)
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}

		if kind := classifyErrorType(err); kind == lastKind {
			streak++
		} else {
			lastKind, streak = kind, 1
		}
		if cfg.MaxSameErrorType > 0 && streak >= cfg.MaxSameErrorType {
			return backoff.Permanent(fmt.Errorf("repeated error (%d times, type=%s): %w", streak, lastKind, err))
		}
		return err
	}

	var notify backoff.Notify
	if cfg.OnRetry != nil {
		notify = cfg.OnRetry
	}
	return backoff.RetryNotify(op, cfg.policy(ctx), notify)
}

// DoValue is DoIfRetryable for functions that produce a value.
func DoValue[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	var out T
	err := DoIfRetryable(ctx, cfg, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
