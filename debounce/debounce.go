// Package debounce delays rapidly changing input until it has been quiet for
// a fixed window, e.g. search text before it becomes part of a query key.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet window used for search input.
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs the most recently scheduled function once no new call has
// arrived for the delay. A superseded or cancelled timer never runs its
// function, even when it already fired.
type Debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	delay  time.Duration
	seq    uint64
	closed bool
}

// New creates a debouncer. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet window.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn, replacing any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stopLocked()
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.closed || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.seq++
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Immediate cancels the pending function and runs fn now.
func (d *Debouncer) Immediate(fn func()) {
	d.Cancel()
	fn()
}

// Pending reports whether a function is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close cancels the pending function and ignores later triggers.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
