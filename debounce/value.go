package debounce

import (
	"sync"
	"time"
)

// Value holds a source value and the settled copy consumers see. The settled
// value only changes after the source has been unchanged for the delay, so
// intermediate values are never observed.
type Value[T comparable] struct {
	d *Debouncer

	// publishMu serializes publishes so settle callbacks run in order.
	publishMu sync.Mutex

	mu       sync.Mutex
	seq      uint64 // bumped by every Set; a firing for an older seq is dropped
	source   T
	settled  T
	changes  chan T
	onSettle []func(T)
	closed   bool
}

// ValueOption configures a Value.
type ValueOption[T comparable] func(*Value[T])

// OnSettle registers fn to run with each newly settled value. It runs on
// the timer goroutine, must not block and must not call Flush.
func OnSettle[T comparable](fn func(T)) ValueOption[T] {
	return func(v *Value[T]) {
		if fn != nil {
			v.onSettle = append(v.onSettle, fn)
		}
	}
}

// NewValue creates a Value whose settled value starts as initial.
func NewValue[T comparable](initial T, delay time.Duration, opts ...ValueOption[T]) *Value[T] {
	v := &Value[T]{
		d:       New(delay),
		source:  initial,
		settled: initial,
		changes: make(chan T, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Set updates the source value and restarts the quiet window.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || x == v.source {
		return
	}
	v.source = x
	v.seq++
	if x == v.settled {
		v.d.Cancel()
		return
	}
	seq := v.seq
	v.d.Trigger(func() { v.publish(seq) })
}

// Flush settles the current source value now.
func (v *Value[T]) Flush() {
	v.mu.Lock()
	seq := v.seq
	v.mu.Unlock()
	v.d.Immediate(func() { v.publish(seq) })
}

// Source returns the latest source value.
func (v *Value[T]) Source() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source
}

// Settled returns the settled value.
func (v *Value[T]) Settled() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settled
}

// Changes delivers settled values. Only the latest undelivered value is
// kept. The channel is closed by Close.
func (v *Value[T]) Changes() <-chan T {
	return v.changes
}

// Close disarms the pending timer. Nothing is published afterwards.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	v.d.Close()
	close(v.changes)
}

// publish settles the source value set at seq. A Set that raced with the
// timer restarted the quiet window, so the older firing is dropped.
func (v *Value[T]) publish(seq uint64) {
	v.publishMu.Lock()
	defer v.publishMu.Unlock()

	v.mu.Lock()
	if v.closed || seq != v.seq || v.source == v.settled {
		v.mu.Unlock()
		return
	}
	v.settled = v.source
	x := v.settled
	select {
	case <-v.changes:
	default:
	}
	v.changes <- x
	callbacks := v.onSettle
	v.mu.Unlock()

	for _, fn := range callbacks {
		fn(x)
	}
}
