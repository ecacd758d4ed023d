package resilience

import (
	"context"
	"time"
)

// Config describes a full executor. It is loaded from the "resilience"
// configuration section.
type Config struct {
	Timeout        time.Duration        `mapstructure:"timeout"`
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	RateLimit      RateLimiterConfig    `mapstructure:"rate_limit"`
	Bulkhead       BulkheadConfig       `mapstructure:"bulkhead"`
}

// DefaultConfig returns the executor settings used for the admin API.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		Retry:          RetryConfig{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second, Multiplier: 2, Jitter: true},
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 5, ResetTimeout: 30 * time.Second, HalfOpenMaxRequests: 1},
		RateLimit:      RateLimiterConfig{Rate: 20, Burst: 10, WaitOnLimit: true, MaxWait: 2 * time.Second},
		Bulkhead:       BulkheadConfig{MaxConcurrent: 8, MaxWait: 5 * time.Second},
	}
}

// Executor composes the resilience patterns.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. With no options it only runs op.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewExecutorFromConfig builds an executor with every pattern enabled.
// onStateChange, when non-nil, observes circuit transitions.
func NewExecutorFromConfig(cfg Config, onStateChange func(from, to State)) *Executor {
	cb := cfg.CircuitBreaker
	cb.OnStateChange = onStateChange
	return NewExecutor(
		WithRateLimiter(NewRateLimiter(cfg.RateLimit)),
		WithBulkhead(NewBulkhead(cfg.Bulkhead)),
		WithCircuitBreaker(NewCircuitBreaker(cb)),
		WithRetry(NewRetry(cfg.Retry)),
		WithTimeout(cfg.Timeout),
	)
}

// WithCircuitBreaker adds a circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry adds retries for idempotent calls.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithRateLimiter adds rate limiting.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = rl }
}

// WithBulkhead adds a concurrency bound.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout adds a per-attempt timeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(d) }
}

// Execute runs an idempotent operation through every configured pattern,
// retrying transient failures.
//
// The order, outermost first, is rate limiter, bulkhead, retry, circuit
// breaker, timeout. Each retry attempt passes the circuit breaker.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	return e.run(ctx, op, true)
}

// ExecuteOnce runs a non-idempotent operation, such as a mutation, through
// every pattern except retry.
func (e *Executor) ExecuteOnce(ctx context.Context, op func(context.Context) error) error {
	return e.run(ctx, op, false)
}

func (e *Executor) run(ctx context.Context, op func(context.Context) error, retry bool) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error { return e.timeout.Execute(ctx, inner) }
	}
	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error { return e.circuitBreaker.Execute(ctx, inner) }
	}
	if retry && e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error { return e.retry.Execute(ctx, inner) }
	}
	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error { return e.bulkhead.Execute(ctx, inner) }
	}
	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error { return e.rateLimiter.Execute(ctx, inner) }
	}
	return execute(ctx)
}

// CircuitBreaker returns the executor's breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker { return e.circuitBreaker }

// Bulkhead returns the executor's bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead { return e.bulkhead }

// RateLimiter returns the executor's rate limiter, or nil.
func (e *Executor) RateLimiter() *RateLimiter { return e.rateLimiter }
