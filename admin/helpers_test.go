package admin

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/internal/fakeapi"
	"github.com/jonwraymond/fleetsync/notify"
	"github.com/jonwraymond/fleetsync/query"
)

type harness struct {
	srv *fakeapi.Server
	svc *Service
	q   *query.Client
	rec *notify.Recorder
}

func newHarness(t *testing.T, opts ...api.Option) *harness {
	t.Helper()
	srv := fakeapi.Seeded()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ac, err := api.New(api.Config{BaseURL: ts.URL + fakeapi.Prefix, Timeout: 5 * time.Second}, opts...)
	require.NoError(t, err)

	rec := notify.NewRecorder()
	q := query.NewClient(
		query.WithNotifier(rec),
		query.WithPolicy(query.Policy{StaleTime: time.Hour, RetentionTime: time.Minute}),
	)
	t.Cleanup(q.Close)

	svc, err := New(ac, q)
	require.NoError(t, err)
	return &harness{srv: srv, svc: svc, q: q, rec: rec}
}

func observe[T any](t *testing.T, h *harness, spec query.Spec[T]) *query.Observer[T] {
	t.Helper()
	o := query.NewObserver[T](h.q)
	t.Cleanup(o.Close)
	require.NoError(t, o.Observe(spec))
	waitFor(t, o, settled[T])
	return o
}

type waiter[T any] interface {
	WaitFor(ctx context.Context, pred func(query.Result[T]) bool) (query.Result[T], error)
}

func waitFor[T any](t *testing.T, o waiter[T], pred func(query.Result[T]) bool) query.Result[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	r, err := o.WaitFor(ctx, pred)
	require.NoError(t, err, "last result %+v", r)
	return r
}

func settled[T any](r query.Result[T]) bool {
	return r.HasData && !r.IsFetching && !r.IsPlaceholder
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
