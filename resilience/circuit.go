package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow normally.
	StateClosed State = iota
	// StateOpen means calls are rejected.
	StateOpen
	// StateHalfOpen means a limited number of probe calls are allowed.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 5
	MaxFailures int `mapstructure:"max_failures"`

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30s
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`

	// HalfOpenMaxRequests is the number of concurrent probes.
	// Default: 1
	HalfOpenMaxRequests int `mapstructure:"half_open_max_requests"`

	// OnStateChange is called on every transition, outside the breaker lock.
	OnStateChange func(from, to State) `mapstructure:"-"`

	// IsFailure decides whether an error counts against the API.
	// Default: IsTransient, so rejected input never opens the circuit.
	IsFailure func(err error) bool `mapstructure:"-"`
}

// CircuitBreaker stops calling an unhealthy API until it recovers.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	probes      int
	rejected    int64
	transitions int64
}

// NewCircuitBreaker creates a circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = IsTransient
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// Allow reserves a call. On success the caller must report the outcome
// through done exactly once.
func (cb *CircuitBreaker) Allow() (done func(err error), err error) {
	cb.mu.Lock()
	from := cb.state
	cb.advanceLocked()
	switch cb.state {
	case StateOpen:
		cb.rejected++
		cb.mu.Unlock()
		cb.notify(from, StateOpen)
		return nil, ErrCircuitOpen
	case StateHalfOpen:
		if cb.probes >= cb.config.HalfOpenMaxRequests {
			cb.rejected++
			cb.mu.Unlock()
			cb.notify(from, StateHalfOpen)
			return nil, ErrCircuitOpen
		}
		cb.probes++
	}
	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)

	var once sync.Once
	return func(err error) {
		once.Do(func() { cb.record(err) })
	}, nil
}

// Execute runs op through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	done, err := cb.Allow()
	if err != nil {
		return err
	}
	err = op(ctx)
	done(err)
	return err
}

func (cb *CircuitBreaker) record(err error) {
	failed := err != nil && cb.config.IsFailure(err)

	cb.mu.Lock()
	from := cb.state
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			break
		}
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.openLocked()
		}
	case StateHalfOpen:
		if cb.probes > 0 {
			cb.probes--
		}
		if failed {
			cb.openLocked()
		} else {
			cb.state = StateClosed
			cb.failures = 0
			cb.probes = 0
		}
	}
	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)
}

func (cb *CircuitBreaker) openLocked() {
	cb.state = StateOpen
	cb.openedAt = cb.now()
	cb.probes = 0
}

// advanceLocked moves an expired open circuit to half-open.
func (cb *CircuitBreaker) advanceLocked() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.probes = 0
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from == to {
		return
	}
	cb.mu.Lock()
	cb.transitions++
	cb.mu.Unlock()
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advanceLocked()
	return cb.state
}

// Reset closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.probes = 0
	cb.mu.Unlock()
	cb.notify(from, StateClosed)
}

// CircuitBreakerMetrics is a snapshot of breaker counters.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Rejected    int64
	Transitions int64
	OpenedAt    time.Time
}

// Metrics returns a snapshot of breaker counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advanceLocked()
	return CircuitBreakerMetrics{
		State:       cb.state,
		Failures:    cb.failures,
		Rejected:    cb.rejected,
		Transitions: cb.transitions,
		OpenedAt:    cb.openedAt,
	}
}
