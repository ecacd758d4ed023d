package query

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/fleetsync/notify"
	"github.com/jonwraymond/fleetsync/observe"
)

// Client is the process-wide query store. Entries are addressed by Key and
// shared by every observer, Get caller and mutation using the same Client.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Dedup: concurrent fetches of the same key generation share one call.
//   - Ownership: entries change only through fetches and Invalidate; callers
//     never write cache data directly.
//   - Lifecycle: Close cancels in-flight fetches and waits for them.
type Client struct {
	policy   Policy
	mw       *observe.Middleware
	notifier notify.Notifier
	validate *validator.Validate

	store   *ttlcache.Cache[string, *entry]
	flights singleflight.Group

	mu         sync.Mutex
	listeners  map[string]map[uint64]func()
	nextListen uint64
	closed     bool

	gen atomic.Uint64

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	janitorDone chan struct{}
}

// fetchFunc is the untyped form of Spec.Fetch.
type fetchFunc func(ctx context.Context) (any, error)

type entry struct {
	key Key

	data      any
	hasData   bool
	dataGen   uint64
	updatedAt time.Time
	err       error

	gen      uint64 // bumped on invalidation
	stale    bool   // invalidated since the last successful fetch
	fetching int

	observers int
	fetch     fetchFunc
	name      string
	staleTime time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPolicy sets the freshness and retention policy.
func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithMiddleware instruments fetches and mutations.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(c *Client) {
		if mw != nil {
			c.mw = mw
		}
	}
}

// WithNotifier sets where mutation notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithValidator replaces the validator used for mutation inputs.
func WithValidator(v *validator.Validate) Option {
	return func(c *Client) {
		if v != nil {
			c.validate = v
		}
	}
}

// NewClient creates a Client and starts its retention janitor.
func NewClient(opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		policy:      DefaultPolicy(),
		mw:          observe.NopMiddleware(),
		notifier:    notify.Nop(),
		validate:    NewValidator(),
		listeners:   make(map[string]map[uint64]func()),
		ctx:         ctx,
		cancel:      cancel,
		janitorDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.store = ttlcache.New[string, *entry](
		ttlcache.WithTTL[string, *entry](c.policy.EffectiveRetention()),
		ttlcache.WithDisableTouchOnHit[string, *entry](),
	)
	go func() {
		defer close(c.janitorDone)
		c.store.Start()
	}()
	return c
}

// Policy returns the client's policy.
func (c *Client) Policy() Policy { return c.policy }

// Notifier returns the notifier mutations report to.
func (c *Client) Notifier() notify.Notifier { return c.notifier }

// Close cancels in-flight fetches, waits for them and drops every entry.
// It is idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.listeners = make(map[string]map[uint64]func())
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	// Start may not have begun yet; Stop is a no-op until it has.
	for {
		c.store.Stop()
		select {
		case <-c.janitorDone:
			c.store.DeleteAll()
			return
		case <-time.After(time.Millisecond):
		}
	}
}

// entryLocked returns the entry for key, creating it when missing.
// c.mu must be held.
func (c *Client) entryLocked(key Key) *entry {
	ks := key.String()
	if item := c.store.Get(ks); item != nil {
		return item.Value()
	}
	e := &entry{key: key, gen: c.gen.Add(1), stale: true}
	c.store.Set(ks, e, c.retentionFor(e))
	return e
}

func (c *Client) retentionFor(e *entry) time.Duration {
	if e.observers > 0 {
		return ttlcache.NoTTL
	}
	return c.policy.EffectiveRetention()
}

func (c *Client) freshLocked(e *entry) bool {
	return e.hasData && !e.stale && c.policy.isFresh(e.updatedAt, e.staleTime)
}

// listenersLocked snapshots the listeners of key. c.mu must be held.
func (c *Client) listenersLocked(ks string) []func() {
	set := c.listeners[ks]
	if len(set) == 0 {
		return nil
	}
	out := make([]func(), 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

func notifyAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// cached returns data for key when it is fresh under staleTime.
func (c *Client) cached(key Key, staleTime time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.store.Get(key.String())
	if item == nil {
		return nil, false
	}
	e := item.Value()
	if !e.hasData || e.stale || !c.policy.isFresh(e.updatedAt, staleTime) {
		return nil, false
	}
	return e.data, true
}

// fetch runs fn for key through the dedup group. When reserved is true the
// caller already counted the fetch and registered it with c.wg.
func (c *Client) fetch(ctx context.Context, key Key, name string, fn fetchFunc, reserved bool) (any, error) {
	ks := key.String()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if reserved {
			c.release(key)
		}
		return nil, ErrClosed
	}
	e := c.entryLocked(key)
	if !reserved {
		e.fetching++
		c.wg.Add(1)
	}
	gen := e.gen
	listeners := c.listenersLocked(ks)
	c.mu.Unlock()
	notifyAll(listeners)

	flight := ks + "#" + strconv.FormatUint(gen, 10)
	ch := c.flights.DoChan(flight, func() (any, error) {
		return c.runFlight(ctx, key, gen, name, fn)
	})

	select {
	case r := <-ch:
		c.release(key)
		return r.Val, r.Err
	case <-ctx.Done():
		go func() {
			<-ch
			c.release(key)
		}()
		return nil, ctx.Err()
	}
}

// runFlight performs one network fetch. It outlives the caller that started
// it but not the client.
func (c *Client) runFlight(ctx context.Context, key Key, gen uint64, name string, fn fetchFunc) (any, error) {
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	if name == "" {
		name = key.Scope()
	}
	if name == "" {
		name = "fetch"
	}
	meta := observe.OpMeta{Domain: key.Domain(), Name: name, Kind: observe.KindQuery, Key: key.String()}

	var v any
	err := c.mw.Run(fctx, meta, func(ctx context.Context) error {
		var ferr error
		v, ferr = fn(ctx)
		return ferr
	})
	c.complete(key, gen, v, err)
	return v, err
}

// complete stores the outcome of a fetch started at generation gen.
// Data from an older generation never replaces newer data, and only a fetch
// of the current generation marks the entry fresh.
func (c *Client) complete(key Key, gen uint64, v any, err error) {
	ks := key.String()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	e := c.entryLocked(key)
	if err != nil {
		e.err = err
	} else if gen >= e.dataGen {
		e.data = v
		e.hasData = true
		e.dataGen = gen
		e.updatedAt = time.Now()
		e.err = nil
		if gen == e.gen {
			e.stale = false
		}
	}
	if e.observers == 0 {
		c.store.Set(ks, e, c.retentionFor(e))
	}
	listeners := c.listenersLocked(ks)
	c.mu.Unlock()
	notifyAll(listeners)
}

// release ends one counted fetch of key.
func (c *Client) release(key Key) {
	ks := key.String()

	c.mu.Lock()
	var listeners []func()
	if item := c.store.Get(ks); item != nil {
		e := item.Value()
		if e.fetching > 0 {
			e.fetching--
		}
		listeners = c.listenersLocked(ks)
	}
	c.mu.Unlock()

	c.wg.Done()
	notifyAll(listeners)
}

// spawnLocked starts a background fetch for e. c.mu must be held.
func (c *Client) spawnLocked(ctx context.Context, e *entry) {
	if c.closed || e.fetch == nil {
		return
	}
	e.fetching++
	c.wg.Add(1)
	key, name, fn := e.key, e.name, e.fetch
	go func() {
		_, _ = c.fetch(ctx, key, name, fn, true)
	}()
}

// attach registers an observer of key. The returned detach function is
// idempotent.
func (c *Client) attach(ctx context.Context, key Key, name string, staleTime time.Duration, fn fetchFunc, listener func()) (detach func(), err error) {
	ks := key.String()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	e := c.entryLocked(key)
	e.observers++
	e.fetch = fn
	e.name = name
	e.staleTime = staleTime
	if e.observers == 1 {
		c.store.Set(ks, e, ttlcache.NoTTL)
	}

	c.nextListen++
	id := c.nextListen
	if c.listeners[ks] == nil {
		c.listeners[ks] = make(map[uint64]func())
	}
	c.listeners[ks][id] = listener

	if !c.freshLocked(e) {
		c.spawnLocked(ctx, e)
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.detach(key, id) })
	}, nil
}

func (c *Client) detach(key Key, id uint64) {
	ks := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	if set := c.listeners[ks]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(c.listeners, ks)
		}
	}
	if c.closed {
		return
	}
	item := c.store.Get(ks)
	if item == nil {
		return
	}
	e := item.Value()
	if e.observers > 0 {
		e.observers--
	}
	if e.observers == 0 {
		e.fetch = nil
		c.store.Set(ks, e, c.retentionFor(e))
	}
}

// Invalidate marks every entry whose key starts with one of prefixes as
// stale. Observed entries are refetched in the background; unobserved ones
// are refetched on their next read. It returns the number of entries marked.
func (c *Client) Invalidate(ctx context.Context, prefixes ...Key) int {
	if len(prefixes) == 0 {
		return 0
	}

	var entries []*entry
	c.store.Range(func(item *ttlcache.Item[string, *entry]) bool {
		entries = append(entries, item.Value())
		return true
	})

	perPrefix := make([]int, len(prefixes))
	var listeners []func()
	marked := 0

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	for _, e := range entries {
		for i, p := range prefixes {
			if !e.key.HasPrefix(p) {
				continue
			}
			e.stale = true
			e.gen = c.gen.Add(1)
			perPrefix[i]++
			marked++
			if e.observers > 0 {
				c.spawnLocked(c.ctx, e)
			}
			listeners = append(listeners, c.listenersLocked(e.key.String())...)
			break
		}
	}
	c.mu.Unlock()

	for i, p := range prefixes {
		c.mw.Metrics().RecordInvalidation(ctx, p.String(), perPrefix[i])
	}
	c.mw.Logger().Debug(ctx, "query invalidated",
		observe.F("prefixes", len(prefixes)),
		observe.F("entries", marked),
	)
	notifyAll(listeners)
	return marked
}

// EntryInfo is a read-only view of one cache entry.
type EntryInfo struct {
	Key       Key
	Data      any
	HasData   bool
	Err       error
	UpdatedAt time.Time
	Stale     bool
	Fetching  bool
	Observers int
}

// Snapshot returns a view of the entry for key.
func (c *Client) Snapshot(key Key) (EntryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.store.Get(key.String())
	if item == nil {
		return EntryInfo{}, false
	}
	return infoOf(item.Value()), true
}

func infoOf(e *entry) EntryInfo {
	return EntryInfo{
		Key:       e.key,
		Data:      e.data,
		HasData:   e.hasData,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     e.stale,
		Fetching:  e.fetching > 0,
		Observers: e.observers,
	}
}

// Stats summarizes the store.
type Stats struct {
	Entries  int
	Observed int
	Fetching int
	Errored  int
	Closed   bool
}

// Stats returns a summary of the store.
func (c *Client) Stats() Stats {
	var entries []*entry
	c.store.Range(func(item *ttlcache.Item[string, *entry]) bool {
		entries = append(entries, item.Value())
		return true
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Entries: len(entries), Closed: c.closed}
	for _, e := range entries {
		if e.observers > 0 {
			s.Observed++
		}
		if e.fetching > 0 {
			s.Fetching++
		}
		if e.err != nil {
			s.Errored++
		}
	}
	return s
}

// refetch starts a background fetch of an observed key.
func (c *Client) refetch(ctx context.Context, key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item := c.store.Get(key.String()); item != nil {
		c.spawnLocked(ctx, item.Value())
	}
}
