package observe

import (
	"context"
	"time"
)

// ExecuteFunc is an instrumentable unit of work: one fetch, mutation or API call.
type ExecuteFunc func(ctx context.Context, op OpMeta) error

// Middleware wraps operations with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Metrics exposes the metrics sink, for records that are not executions.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger exposes the logger.
func (m *Middleware) Logger() Logger { return m.logger }

// Wrap wraps fn with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, op OpMeta) error {
		ctx, span := m.tracer.StartSpan(ctx, op)
		start := time.Now()

		err := fn(ctx, op)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, op, duration, err)

		opLogger := m.logger.WithOp(op)
		fields := []Field{F("duration_ms", float64(duration.Milliseconds()))}
		if err != nil {
			fields = append(fields, F("error", err))
			opLogger.Warn(ctx, string(op.Kind)+" failed", fields...)
		} else {
			opLogger.Debug(ctx, string(op.Kind)+" completed", fields...)
		}

		return err
	}
}

// Run executes fn once through the middleware.
func (m *Middleware) Run(ctx context.Context, op OpMeta, fn func(ctx context.Context) error) error {
	return m.Wrap(func(ctx context.Context, _ OpMeta) error { return fn(ctx) })(ctx, op)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
