package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when max retry attempts are exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an attempt exceeds its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// Transient is implemented by errors that know whether retrying may succeed,
// e.g. a 503 response.
type Transient interface {
	Transient() bool
}

// IsTransient reports whether err is worth retrying. Errors implementing
// Transient decide for themselves. Network errors and ErrTimeout are
// transient. Cancellation and everything else are not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var t Transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// RetryError is returned when every attempt failed.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrMaxRetriesExceeded, e.Attempts, e.Err)
}

// Unwrap exposes both ErrMaxRetriesExceeded and the last attempt's error.
func (e *RetryError) Unwrap() []error {
	return []error{ErrMaxRetriesExceeded, e.Err}
}
