package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of calls allowed in flight.
	// Default: 8
	MaxConcurrent int `mapstructure:"max_concurrent"`

	// MaxWait is how long to wait for a slot. Zero fails immediately.
	MaxWait time.Duration `mapstructure:"max_wait"`
}

// Bulkhead bounds the number of concurrent API calls.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 8
	}
	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire takes a slot. It returns ErrBulkheadFull when none frees up within
// MaxWait.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if !b.sem.TryAcquire(1) {
		if b.config.MaxWait <= 0 {
			b.reject()
			return ErrBulkheadFull
		}
		wctx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
		err := b.sem.Acquire(wctx, 1)
		cancel()
		if err != nil {
			b.reject()
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			return ErrBulkheadFull
		}
	}

	b.mu.Lock()
	b.active++
	b.maxActive = max(b.maxActive, b.active)
	b.mu.Unlock()
	return nil
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	b.sem.Release(1)
}

// Execute runs op inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

func (b *Bulkhead) reject() {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
}

// BulkheadMetrics is a snapshot of bulkhead usage.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Rejected      int64
	MaxConcurrent int
}

// Metrics returns a snapshot of bulkhead usage.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BulkheadMetrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Rejected:      b.rejected,
		MaxConcurrent: b.config.MaxConcurrent,
	}
}
