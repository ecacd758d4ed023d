package notify

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the dispatcher queue size used when none is given.
const DefaultBuffer = 64

type queued struct {
	ctx context.Context
	n   Notification
}

// Dispatcher delivers notifications to a sink on its own goroutine.
// Notify never blocks: when the queue is full or the dispatcher is closed,
// the notification is dropped and counted.
type Dispatcher struct {
	sink Notifier
	ch   chan queued
	done chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
}

// NewDispatcher starts a dispatcher in front of sink.
func NewDispatcher(sink Notifier, buffer int) *Dispatcher {
	if sink == nil {
		sink = Nop()
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	d := &Dispatcher{
		sink: sink,
		ch:   make(chan queued, buffer),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for q := range d.ch {
		d.deliver(q)
	}
}

func (d *Dispatcher) deliver(q queued) {
	defer func() {
		// A panicking sink must not take the dispatcher down with it.
		_ = recover()
	}()
	d.sink.Notify(q.ctx, q.n)
}

// Notify enqueues n. The caller's cancellation does not apply to delivery.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return
	}
	select {
	case d.ch <- queued{ctx: context.WithoutCancel(ctx), n: n}:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns how many notifications were discarded.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting notifications and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()
	<-d.done
}

var _ Notifier = (*Dispatcher)(nil)
