package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c := NewClient(opts...)
	t.Cleanup(c.Close)
	return c
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestGet_DeduplicatesConcurrentCalls(t *testing.T) {
	c := newTestClient(t)

	var calls atomic.Int32
	release := make(chan struct{})
	spec := Spec[int]{
		Key: MustKey("hubs", "stats"),
		Fetch: func(ctx context.Context) (int, error) {
			calls.Add(1)
			<-release
			return 42, nil
		},
	}

	var wg sync.WaitGroup
	results := make([]int, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Get(context.Background(), c, spec)
		}(i)
	}

	eventually(t, func() bool { return calls.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	for i := range results {
		if errs[i] != nil || results[i] != 42 {
			t.Errorf("caller %d got (%d, %v), want (42, nil)", i, results[i], errs[i])
		}
	}
}

func TestGet_ServesFreshDataFromCache(t *testing.T) {
	c := newTestClient(t, WithPolicy(Policy{StaleTime: time.Minute, RetentionTime: time.Minute}))

	var calls atomic.Int32
	spec := Spec[string]{
		Key: MustKey("profile"),
		Fetch: func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "admin", nil
		},
	}

	for i := 0; i < 3; i++ {
		v, err := Get(context.Background(), c, spec)
		if err != nil || v != "admin" {
			t.Fatalf("Get() = (%q, %v)", v, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestGet_StaleByDefault(t *testing.T) {
	c := newTestClient(t)

	var calls atomic.Int32
	spec := Spec[int]{
		Key: MustKey("hubs", "list"),
		Fetch: func(ctx context.Context) (int, error) {
			return int(calls.Add(1)), nil
		},
	}
	_, _ = Get(context.Background(), c, spec)
	v, err := Get(context.Background(), c, spec)
	if err != nil || v != 2 {
		t.Errorf("second Get() = (%d, %v), want (2, nil)", v, err)
	}
}

func TestGet_DisabledNeverFetches(t *testing.T) {
	c := newTestClient(t)

	called := false
	_, err := Get(context.Background(), c, Spec[int]{
		Key:     MustKey("riders", "detail", ""),
		Fetch:   func(ctx context.Context) (int, error) { called = true; return 0, nil },
		Enabled: func() bool { return false },
	})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Get() error = %v, want ErrDisabled", err)
	}
	if called {
		t.Error("disabled query must not fetch")
	}
}

func TestGet_InvalidSpec(t *testing.T) {
	c := newTestClient(t)

	if _, err := Get(context.Background(), c, Spec[int]{Key: MustKey("hubs")}); !errors.Is(err, ErrNilFetch) {
		t.Errorf("error = %v, want ErrNilFetch", err)
	}
	if _, err := Get(context.Background(), c, Spec[int]{Fetch: func(context.Context) (int, error) { return 0, nil }}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("error = %v, want ErrInvalidKey", err)
	}
}

func TestGet_ErrorKeepsPreviousData(t *testing.T) {
	c := newTestClient(t)

	fail := errors.New("boom")
	var shouldFail atomic.Bool
	spec := Spec[string]{
		Key: MustKey("settings"),
		Fetch: func(ctx context.Context) (string, error) {
			if shouldFail.Load() {
				return "", fail
			}
			return "v1", nil
		},
	}
	if _, err := Get(context.Background(), c, spec); err != nil {
		t.Fatal(err)
	}
	shouldFail.Store(true)
	if _, err := Get(context.Background(), c, spec); !errors.Is(err, fail) {
		t.Fatalf("error = %v, want boom", err)
	}

	info, ok := c.Snapshot(spec.Key)
	if !ok || info.Data != "v1" || !errors.Is(info.Err, fail) {
		t.Errorf("Snapshot() = %+v, %v", info, ok)
	}
}

func TestGet_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	c := newTestClient(t)

	release := make(chan struct{})
	spec := Spec[int]{
		Key: MustKey("wallets", "list"),
		Fetch: func(ctx context.Context) (int, error) {
			<-release
			return 7, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Get(ctx, c, spec)
		done <- err
	}()
	eventually(t, func() bool {
		info, ok := c.Snapshot(spec.Key)
		return ok && info.Fetching
	})
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want context.Canceled", err)
	}

	close(release)
	eventually(t, func() bool {
		info, _ := c.Snapshot(spec.Key)
		return info.HasData && info.Data == 7 && !info.Fetching
	})
}

func TestInvalidate_FetchStartedBeforeInvalidationStaysStale(t *testing.T) {
	c := newTestClient(t, WithPolicy(Policy{StaleTime: time.Minute}))

	var calls atomic.Int32
	release := make(chan struct{})
	spec := Spec[int]{
		Key: MustKey("riders", "stats"),
		Fetch: func(ctx context.Context) (int, error) {
			n := calls.Add(1)
			if n == 1 {
				<-release
			}
			return int(n), nil
		},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Get(context.Background(), c, spec)
	}()
	eventually(t, func() bool { return calls.Load() == 1 })

	if n := c.Invalidate(context.Background(), MustKey("riders")); n != 1 {
		t.Fatalf("Invalidate() = %d, want 1", n)
	}
	close(release)
	<-done

	info, _ := c.Snapshot(spec.Key)
	if !info.Stale {
		t.Error("data fetched before invalidation must remain stale")
	}

	v, err := Get(context.Background(), c, spec)
	if err != nil || v != 2 {
		t.Errorf("Get() after invalidation = (%d, %v), want (2, nil)", v, err)
	}
}

func TestInvalidate_MatchesWholePrefixParts(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for _, k := range []Key{
		MustKey("hubs", "list", Params{"page": 1}),
		MustKey("hubs", "list", Params{"page": 2}),
		MustKey("hubs", "stats"),
		MustKey("hubsArchive", "list"),
	} {
		_, err := Get(ctx, c, Spec[int]{Key: k, Fetch: func(context.Context) (int, error) { return 1, nil }})
		if err != nil {
			t.Fatal(err)
		}
	}

	if got := c.Invalidate(ctx, MustKey("hubs", "list")); got != 2 {
		t.Errorf("Invalidate(hubs/list) = %d, want 2", got)
	}
	if got := c.Invalidate(ctx, MustKey("hubs")); got != 3 {
		t.Errorf("Invalidate(hubs) = %d, want 3", got)
	}
	if got := c.Invalidate(ctx); got != 0 {
		t.Errorf("Invalidate() = %d, want 0", got)
	}
}

func TestClient_CloseStopsFetches(t *testing.T) {
	c := NewClient()

	started := make(chan struct{})
	spec := Spec[int]{
		Key: MustKey("analytics"),
		Fetch: func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		},
	}
	o := NewObserver[int](c)
	if err := o.Observe(spec); err != nil {
		t.Fatal(err)
	}
	<-started
	c.Close()
	c.Close()

	if _, err := Get(context.Background(), c, Spec[int]{Key: MustKey("x"), Fetch: spec.Fetch}); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
	if !c.Stats().Closed {
		t.Error("Stats().Closed = false")
	}
	o.Close()
}

func TestClient_Stats(t *testing.T) {
	c := newTestClient(t)

	_, _ = Get(context.Background(), c, Spec[int]{
		Key:   MustKey("cms", "list"),
		Fetch: func(context.Context) (int, error) { return 0, errors.New("down") },
	})
	s := c.Stats()
	if s.Entries != 1 || s.Errored != 1 || s.Observed != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestClient_RetentionEvictsUnobservedEntries(t *testing.T) {
	c := newTestClient(t, WithPolicy(Policy{RetentionTime: 30 * time.Millisecond}))

	key := MustKey("merchants", "list")
	_, err := Get(context.Background(), c, Spec[int]{Key: key, Fetch: func(context.Context) (int, error) { return 1, nil }})
	if err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool {
		_, ok := c.Snapshot(key)
		return !ok
	})
}
