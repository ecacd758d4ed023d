package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records query, mutation and API call metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one fetch, mutation or API call.
	RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordCacheHit records a read served from a fresh cache entry.
	RecordCacheHit(ctx context.Context, meta OpMeta)

	// RecordInvalidation records how many entries one invalidation marked stale.
	RecordInvalidation(ctx context.Context, prefix string, entries int)
}

type metricsImpl struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	durationHist  metric.Float64Histogram
	cacheHits     metric.Int64Counter
	invalidations metric.Int64Counter
}

// NewMetrics creates Metrics backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"op.total",
		metric.WithDescription("Total number of fetches, mutations and API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"op.errors",
		metric.WithDescription("Total number of failed fetches, mutations and API calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"op.duration_ms",
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"query.cache.hits",
		metric.WithDescription("Reads served from a fresh cache entry"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	invalidations, err := meter.Int64Counter(
		"query.invalidations",
		metric.WithDescription("Cache entries marked stale by mutations"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:    totalCount,
		errorCount:    errorCount,
		durationHist:  durationHist,
		cacheHits:     cacheHits,
		invalidations: invalidations,
	}, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta OpMeta) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

func (m *metricsImpl) RecordInvalidation(ctx context.Context, prefix string, entries int) {
	m.invalidations.Add(ctx, int64(entries), metric.WithAttributes(attribute.String("query.prefix", prefix)))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordExecution(context.Context, OpMeta, time.Duration, error) {}
func (nopMetrics) RecordCacheHit(context.Context, OpMeta)                        {}
func (nopMetrics) RecordInvalidation(context.Context, string, int)               {}
