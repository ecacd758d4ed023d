package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds a single attempt. The operation must honor ctx.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a per-attempt timeout. A non-positive d means 30s.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = 30 * time.Second
	}
	return &Timeout{d: d}
}

// Execute runs op with a deadline. A deadline hit by this timeout becomes
// ErrTimeout; the caller's own deadline or cancellation is returned as is.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}

// Duration returns the timeout.
func (t *Timeout) Duration() time.Duration {
	return t.d
}
