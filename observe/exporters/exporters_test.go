package exporters

import (
	"context"
	"testing"
)

func TestExporter_InvalidName(t *testing.T) {
	if _, err := NewTracingExporter(context.Background(), "zipkin"); err == nil {
		t.Error("expected error for unknown tracing exporter")
	}
	if _, err := NewMetricsReader(context.Background(), "statsd"); err == nil {
		t.Error("expected error for unknown metrics exporter")
	}
}

func TestExporter_OtlpMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp"); err == nil {
		t.Error("expected error without OTLP endpoint")
	}
	if _, err := NewMetricsReader(context.Background(), "otlp"); err == nil {
		t.Error("expected error without OTLP endpoint")
	}
}

func TestExporter_NoneReturnsDiscarding(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "none")
	if err != nil || exp == nil {
		t.Fatalf("NewTracingExporter(none) = %v, %v", exp, err)
	}
	reader, err := NewMetricsReader(context.Background(), "")
	if err != nil || reader == nil {
		t.Fatalf("NewMetricsReader(\"\") = %v, %v", reader, err)
	}
	_ = reader.Shutdown(context.Background())
}
