package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpKind classifies an instrumented operation.
type OpKind string

const (
	KindQuery    OpKind = "query"
	KindMutation OpKind = "mutation"
	KindHTTP     OpKind = "http"
)

// OpMeta describes a query, mutation or API call for telemetry purposes.
type OpMeta struct {
	Domain string // entity domain, e.g. "hubs" (may be empty)
	Name   string // operation name, e.g. "list" or "GET /hubs" (required)
	Kind   OpKind
	Key    string // canonical query key, when there is one
}

// Validate checks that the metadata is usable.
func (m OpMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingOpName
	}
	return nil
}

// OpID returns domain.name, or just name when no domain is set.
func (m OpMeta) OpID() string {
	if m.Domain != "" {
		return m.Domain + "." + m.Name
	}
	return m.Name
}

// SpanName returns <kind>.<domain>.<name>, dropping empty parts.
func (m OpMeta) SpanName() string {
	kind := string(m.Kind)
	if kind == "" {
		kind = "op"
	}
	return kind + "." + m.OpID()
}

func (m OpMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("op.id", m.OpID()),
		attribute.String("op.name", m.Name),
	}
	if m.Domain != "" {
		attrs = append(attrs, attribute.String("op.domain", m.Domain))
	}
	if m.Kind != "" {
		attrs = append(attrs, attribute.String("op.kind", string(m.Kind)))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := meta.attributes()
	if meta.Key != "" {
		attrs = append(attrs, attribute.String("query.key", meta.Key))
	}
	attrs = append(attrs, attribute.Bool("op.error", false))

	kind := trace.SpanKindInternal
	if meta.Kind == KindHTTP {
		kind = trace.SpanKindClient
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
