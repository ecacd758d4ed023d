package health

import (
	"context"

	"github.com/jonwraymond/fleetsync/resilience"
)

// BreakerChecker reports the state of the API circuit breaker.
type BreakerChecker struct {
	cb *resilience.CircuitBreaker
}

// NewBreakerChecker checks cb. A nil breaker is always healthy.
func NewBreakerChecker(cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{cb: cb}
}

func (c *BreakerChecker) Name() string { return "circuit_breaker" }

func (c *BreakerChecker) Check(_ context.Context) Result {
	if c.cb == nil {
		return Healthy("no circuit breaker configured")
	}

	m := c.cb.Metrics()
	details := map[string]any{
		"state":       m.State.String(),
		"failures":    m.Failures,
		"rejected":    m.Rejected,
		"transitions": m.Transitions,
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open, API calls rejected", ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing API").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}
