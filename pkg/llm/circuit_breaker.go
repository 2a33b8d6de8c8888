package llm

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CircuitState is the breaker position. The numeric values are exported as
// the aria_llm_circuit_state gauge.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

var circuitStateNames = [...]string{"closed", "open", "half-open"}

func (s CircuitState) String() string {
	if s < 0 || int(s) >= len(circuitStateNames) {
		return "unknown"
	}
	return circuitStateNames[s]
}

// CircuitBreakerConfig tunes a CircuitBreaker. Zero values fall back to
// DefaultCircuitBreakerConfig and the real clock.
type CircuitBreakerConfig struct {
	Threshold  int           // consecutive failures that open the circuit
	ResetAfter time.Duration // open time before a single probe is let through
	Clock      clockwork.Clock

	// OnStateChange is called after every transition, outside the lock.
	OnStateChange func(from, to CircuitState)
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{Threshold: 5, ResetAfter: 30 * time.Second}
}

// CircuitBreaker fails fast once the model provider keeps erroring, so a
// question does not spend its whole budget waiting on a dead endpoint. The
// caller decides what counts as a failure; rate limits are not recorded.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       CircuitState
	failures    int
	lastFailure time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultCircuitBreakerConfig().Threshold
	}
	return &CircuitBreaker{cfg: cfg}
}

// Allow returns nil when a call may go out and a circuit_open *Error when it
// may not. Once ResetAfter has passed, exactly one caller gets through as the
// half-open probe.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	var err error
	from := cb.state
	switch cb.state {
	case CircuitOpen:
		if since := cb.cfg.Clock.Since(cb.lastFailure); since > cb.cfg.ResetAfter {
			cb.state = CircuitHalfOpen
		} else {
			err = NewError(ErrorTypeCircuit, fmt.Sprintf(
				"LLM provider appears to be down (failed %d times, last failure %v ago)",
				cb.failures, since.Round(time.Second)), false, nil)
		}
	case CircuitHalfOpen:
		err = NewError(ErrorTypeCircuit, "testing if LLM provider has recovered", false, nil)
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return err
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.state
	cb.failures = 0
	cb.state = CircuitClosed
	cb.mu.Unlock()

	cb.notify(from, CircuitClosed)
}

// RecordFailure opens the circuit at the threshold, or immediately when the
// half-open probe fails.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	from := cb.state
	cb.failures++
	cb.lastFailure = cb.cfg.Clock.Now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.cfg.Threshold {
		cb.state = CircuitOpen
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(from, to)
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}
