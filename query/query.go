package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/fleetsync/observe"
)

// Spec describes one read: what to fetch and how it is keyed.
type Spec[T any] struct {
	// Key must include every parameter that changes the response.
	Key Key

	// Fetch performs the network call.
	Fetch func(ctx context.Context) (T, error)

	// Enabled gates execution, e.g. until an id is known. Nil means enabled.
	Enabled func() bool

	// KeepPrevious exposes the previous key's data as placeholder while a
	// new key loads.
	KeepPrevious bool

	// StaleTime overrides Policy.StaleTime for this read.
	StaleTime time.Duration

	// Name labels telemetry. Defaults to the key's scope.
	Name string
}

// IsEnabled reports whether the spec may execute.
func (s Spec[T]) IsEnabled() bool {
	return s.Enabled == nil || s.Enabled()
}

func (s Spec[T]) validate() error {
	if s.Key.IsZero() {
		return ErrInvalidKey
	}
	if s.Fetch == nil {
		return ErrNilFetch
	}
	return nil
}

func (s Spec[T]) fetchAny() fetchFunc {
	return func(ctx context.Context) (any, error) {
		return s.Fetch(ctx)
	}
}

// Result is what an observer exposes for rendering.
type Result[T any] struct {
	Data T
	// HasData is true when Data holds fetched or placeholder data.
	HasData bool
	// IsLoading is true while a fetch is running and no data, including
	// placeholder, is available.
	IsLoading bool
	// IsFetching is true while any fetch of the key is running.
	IsFetching bool
	// IsPlaceholder is true when Data belongs to the previous key.
	IsPlaceholder bool
	// Err is the error of the last attempt, nil after a success.
	Err error
}

// Get returns fresh cached data for spec.Key, or fetches it. Concurrent Get
// calls with equal keys share one fetch and receive the same value.
func Get[T any](ctx context.Context, c *Client, spec Spec[T]) (T, error) {
	var zero T
	if err := spec.validate(); err != nil {
		return zero, err
	}
	if !spec.IsEnabled() {
		return zero, ErrDisabled
	}

	if v, ok := c.cached(spec.Key, spec.StaleTime); ok {
		if t, ok := v.(T); ok {
			c.mw.Metrics().RecordCacheHit(ctx, observe.OpMeta{
				Domain: spec.Key.Domain(),
				Name:   spec.Name,
				Kind:   observe.KindQuery,
				Key:    spec.Key.String(),
			})
			return t, nil
		}
	}

	v, err := c.fetch(ctx, spec.Key, spec.Name, spec.fetchAny(), false)
	if err != nil {
		return zero, err
	}
	return as[T](v)
}

func as[T any](v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: got %T", ErrTypeMismatch, v)
	}
	return t, nil
}
