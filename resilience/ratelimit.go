package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of calls allowed per second.
	// Default: 20
	Rate float64 `mapstructure:"rate"`

	// Burst is the bucket size.
	// Default: 5
	Burst int `mapstructure:"burst"`

	// WaitOnLimit waits for a token instead of failing fast.
	WaitOnLimit bool `mapstructure:"wait_on_limit"`

	// MaxWait bounds the wait for a token.
	// Default: 1s
	MaxWait time.Duration `mapstructure:"max_wait"`
}

// RateLimiter is a token bucket in front of the API.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter *rate.Limiter

	rejected atomic.Int64
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 20
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	return &RateLimiter{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	if rl.limiter.Allow() {
		return true
	}
	rl.rejected.Add(1)
	return false
}

// Wait blocks until a token is available, MaxWait elapses or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rl.config.MaxWait)
	defer cancel()

	if err := rl.limiter.Wait(ctx); err != nil {
		rl.rejected.Add(1)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return ErrRateLimitExceeded
	}
	return nil
}

// Execute runs op when a token is available.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	return rl.limiter.Tokens()
}

// Rejected returns how many calls were refused.
func (rl *RateLimiter) Rejected() int64 {
	return rl.rejected.Load()
}

// Config returns the limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}
