package query

import (
	"context"
	"sync"
)

// Observer follows one query at a time, the way a mounted view does.
// Observing a new key detaches from the old one; observing the same key
// again does nothing. After Close no result is published.
type Observer[T any] struct {
	c *Client

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu             sync.Mutex
	key            Key
	attached       bool
	detach         func()
	placeholder    T
	hasPlaceholder bool
	last           Result[T]
	updates        chan Result[T]
	closed         bool
}

// NewObserver creates an observer bound to c.
func NewObserver[T any](c *Client) *Observer[T] {
	ctx, cancel := context.WithCancel(c.ctx)
	return &Observer[T]{
		c:       c,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		updates: make(chan Result[T], 1),
	}
}

// Observe switches the observer to spec. A fetch is started when the key
// changes and its data is not fresh. A disabled spec never fetches.
func (o *Observer[T]) Observe(spec Spec[T]) error {
	if err := spec.validate(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	enabled := spec.IsEnabled()
	if enabled && o.attached && o.key.Equal(spec.Key) {
		return nil
	}

	if o.detach != nil {
		o.detach()
		o.detach = nil
	}
	o.attached = false

	if spec.KeepPrevious && o.last.HasData {
		o.placeholder = o.last.Data
		o.hasPlaceholder = true
	} else {
		var zero T
		o.placeholder = zero
		o.hasPlaceholder = false
	}
	o.key = spec.Key

	if !enabled {
		o.publishLocked(o.resultLocked(EntryInfo{}, false))
		return nil
	}

	detach, err := o.c.attach(o.ctx, spec.Key, spec.Name, spec.StaleTime, spec.fetchAny(), o.refresh)
	if err != nil {
		return err
	}
	o.detach = detach
	o.attached = true

	info, ok := o.c.Snapshot(o.key)
	o.publishLocked(o.resultLocked(info, ok))
	return nil
}

// Refetch fetches the observed key again, e.g. to retry after an error.
func (o *Observer[T]) Refetch() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || !o.attached {
		return
	}
	o.c.refetch(o.ctx, o.key)
}

// Result returns the latest result.
func (o *Observer[T]) Result() Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Updates delivers results as they change. Only the latest undelivered
// result is kept. The channel is closed by Close.
func (o *Observer[T]) Updates() <-chan Result[T] {
	return o.updates
}

// WaitFor blocks until pred holds for the current result, ctx is done or the
// observer is closed. It consumes from Updates.
func (o *Observer[T]) WaitFor(ctx context.Context, pred func(Result[T]) bool) (Result[T], error) {
	for {
		r := o.Result()
		if pred(r) {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return r, ctx.Err()
		case <-o.done:
			return r, ErrClosed
		case _, ok := <-o.updates:
			if !ok {
				return r, ErrClosed
			}
		}
	}
}

// Close detaches the observer. In-flight fetches keep running for other
// observers but their results are no longer delivered here.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	o.cancel()
	if o.detach != nil {
		o.detach()
		o.detach = nil
	}
	o.attached = false
	close(o.done)
	close(o.updates)
}

func (o *Observer[T]) refresh() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || !o.attached {
		return
	}
	info, ok := o.c.Snapshot(o.key)
	o.publishLocked(o.resultLocked(info, ok))
}

func (o *Observer[T]) resultLocked(info EntryInfo, ok bool) Result[T] {
	var r Result[T]
	if ok && info.HasData {
		d, err := as[T](info.Data)
		if err != nil {
			r.Err = err
		} else {
			r.Data = d
			r.HasData = true
			o.hasPlaceholder = false
		}
	}
	if !r.HasData && o.hasPlaceholder {
		r.Data = o.placeholder
		r.HasData = true
		r.IsPlaceholder = true
	}
	if ok {
		r.IsFetching = info.Fetching
		if r.Err == nil {
			r.Err = info.Err
		}
	}
	r.IsLoading = r.IsFetching && !r.HasData
	return r
}

func (o *Observer[T]) publishLocked(r Result[T]) {
	if o.closed {
		return
	}
	o.last = r
	select {
	case <-o.updates:
	default:
	}
	select {
	case o.updates <- r:
	default:
	}
}
