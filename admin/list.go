package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/debounce"
	"github.com/jonwraymond/fleetsync/query"
)

// ListSpecFunc builds the read of one list page, e.g. HubService.ListSpec.
type ListSpecFunc[T any] func(ListParams) query.Spec[api.Page[T]]

// ListController drives one list view: search text is debounced before it
// reaches the query key, while paging and filter changes apply at once.
// Changing the search or a filter returns to the first page. The previous
// page stays visible as placeholder while the next one loads.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Lifecycle: Close tears down the debounce timer and the observer; no
//     result is published afterwards.
type ListController[T any] struct {
	spec   ListSpecFunc[T]
	obs    *query.Observer[api.Page[T]]
	search *debounce.Value[string]

	mu     sync.Mutex
	params ListParams
	err    error // last failed search change
	closed bool
}

// NewListController starts observing the first page for initial. A
// non-positive delay uses debounce.DefaultDelay.
func NewListController[T any](q *query.Client, spec ListSpecFunc[T], initial ListParams, delay time.Duration) (*ListController[T], error) {
	lc := &ListController[T]{
		spec:   spec,
		obs:    query.NewObserver[api.Page[T]](q),
		params: initial.Normalize(),
	}
	lc.search = debounce.NewValue(lc.params.Search, delay, debounce.OnSettle(lc.applySearch))

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if err := lc.obs.Observe(lc.spec(lc.params)); err != nil {
		lc.search.Close()
		lc.obs.Close()
		return nil, err
	}
	return lc, nil
}

// SetSearch records typed search text. The list follows once typing pauses.
func (lc *ListController[T]) SetSearch(s string) {
	lc.search.Set(s)
}

// FlushSearch applies pending search text now, e.g. on Enter.
func (lc *ListController[T]) FlushSearch() {
	lc.search.Flush()
}

// SearchInput returns the text as typed, before debouncing.
func (lc *ListController[T]) SearchInput() string {
	return lc.search.Source()
}

// SetPage moves to page n.
func (lc *ListController[T]) SetPage(n int) error {
	return lc.update(func(p ListParams) ListParams { return p.WithPage(n) })
}

// NextPage moves forward when the current page reports a following one.
func (lc *ListController[T]) NextPage() error {
	r := lc.obs.Result()
	if !r.HasData || r.IsPlaceholder || !r.Data.Pagination.HasNext() {
		return nil
	}
	return lc.update(func(p ListParams) ListParams { return p.WithPage(p.Page + 1) })
}

// SetStatus changes the status filter.
func (lc *ListController[T]) SetStatus(s string) error {
	return lc.update(func(p ListParams) ListParams { return p.WithStatus(s) })
}

// SetFilter changes a categorical filter. Names of typed parameters such
// as "status" are rejected with ErrReservedFilter.
func (lc *ListController[T]) SetFilter(k, v string) error {
	if IsReservedFilter(k) {
		return fmt.Errorf("%w: %q", ErrReservedFilter, k)
	}
	return lc.update(func(p ListParams) ListParams { return p.WithFilter(k, v) })
}

// Params returns the parameters of the observed page.
func (lc *ListController[T]) Params() ListParams {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.params
}

// Result returns the current list state. A search that could not be
// applied is reported in Err until the next successful change.
func (lc *ListController[T]) Result() query.Result[api.Page[T]] {
	r := lc.obs.Result()
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.err != nil && r.Err == nil {
		r.Err = lc.err
	}
	return r
}

// Updates delivers list results as they change.
func (lc *ListController[T]) Updates() <-chan query.Result[api.Page[T]] {
	return lc.obs.Updates()
}

// WaitFor blocks until pred holds for the list result.
func (lc *ListController[T]) WaitFor(ctx context.Context, pred func(query.Result[api.Page[T]]) bool) (query.Result[api.Page[T]], error) {
	return lc.obs.WaitFor(ctx, pred)
}

// Refetch reloads the current page.
func (lc *ListController[T]) Refetch() {
	lc.obs.Refetch()
}

// Close stops the controller.
func (lc *ListController[T]) Close() {
	lc.mu.Lock()
	lc.closed = true
	lc.mu.Unlock()

	lc.search.Close()
	lc.obs.Close()
}

func (lc *ListController[T]) applySearch(s string) {
	if err := lc.update(func(p ListParams) ListParams { return p.WithSearch(s) }); err != nil && !errors.Is(err, query.ErrClosed) {
		lc.mu.Lock()
		lc.err = fmt.Errorf("admin: failed to apply search: %w", err)
		lc.mu.Unlock()
	}
}

// update observes the page for fn(params). The lock is held across Observe
// so concurrent changes reach the observer in the order they were made.
func (lc *ListController[T]) update(fn func(ListParams) ListParams) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.closed {
		return query.ErrClosed
	}
	next := fn(lc.params).Normalize()
	if err := lc.obs.Observe(lc.spec(next)); err != nil {
		return err
	}
	lc.params = next
	lc.err = nil
	return nil
}
