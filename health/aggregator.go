package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jonwraymond/fleetsync/observe"
)

// DefaultTimeout bounds one Run.
const DefaultTimeout = 10 * time.Second

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds every check of one Run. Default: 10s.
	Timeout time.Duration `mapstructure:"timeout"`

	// Sequential runs checks one after another instead of in parallel.
	Sequential bool `mapstructure:"sequential"`
}

// Aggregator runs a set of checkers and folds their results.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Ordering: Report.Order follows registration order.
//   - Deadline: a check still running at the deadline is reported unhealthy
//     with ErrCheckTimeout.
type Aggregator struct {
	config AggregatorConfig
	logger observe.Logger

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithConfig sets the aggregator configuration.
func WithConfig(cfg AggregatorConfig) AggregatorOption {
	return func(a *Aggregator) { a.config = cfg }
}

// WithLogger logs every non-healthy result.
func WithLogger(l observe.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator creates an empty Aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		logger:   observe.NopLogger(),
		checkers: make(map[string]Checker),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.config.Timeout <= 0 {
		a.config.Timeout = DefaultTimeout
	}
	return a
}

// Register adds c under c.Name(), replacing a checker of the same name.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := c.Name()
	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = c
}

// Unregister removes the checker registered under name.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	a.order = slices.DeleteFunc(a.order, func(n string) bool { return n == name })
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.order)
}

// Check runs the checker registered under name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	c, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return a.run(ctx, c), nil
}

// Report is the outcome of one Run.
type Report struct {
	Status    Status            `json:"status"`
	Checks    map[string]Result `json:"checks"`
	Order     []string          `json:"-"`
	Timestamp time.Time         `json:"timestamp"`
}

// Run executes every registered checker.
func (a *Aggregator) Run(ctx context.Context) Report {
	a.mu.RLock()
	order := slices.Clone(a.order)
	checkers := make([]Checker, len(order))
	for i, name := range order {
		checkers[i] = a.checkers[name]
	}
	a.mu.RUnlock()

	report := Report{
		Checks:    make(map[string]Result, len(order)),
		Order:     order,
		Timestamp: time.Now(),
	}
	if len(checkers) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	results := make([]Result, len(checkers))
	if a.config.Sequential {
		for i, c := range checkers {
			results[i] = a.run(ctx, c)
		}
	} else {
		var wg sync.WaitGroup
		for i, c := range checkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = a.run(ctx, c)
			}()
		}
		wg.Wait()
	}

	for i, name := range order {
		report.Checks[name] = results[i]
	}
	report.Status = Overall(results...)
	return report
}

// Overall returns the worst status among results, or healthy for none.
func Overall(results ...Result) Status {
	status := StatusHealthy
	for _, r := range results {
		if r.Status > status {
			status = r.Status
		}
	}
	return status
}

func (a *Aggregator) run(ctx context.Context, c Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		r := c.Check(ctx)
		r.Duration = time.Since(start)
		if r.Timestamp.IsZero() {
			r.Timestamp = start
		}
		done <- r
	}()

	var r Result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}

	if r.Status != StatusHealthy {
		fields := []observe.Field{
			observe.F("check", c.Name()),
			observe.F("status", r.Status.String()),
			observe.F("message", r.Message),
		}
		if r.Error != nil {
			fields = append(fields, observe.F("error", r.Error))
		}
		a.logger.Warn(ctx, "health check not healthy", fields...)
	}
	return r
}
