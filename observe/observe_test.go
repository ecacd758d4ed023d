package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"default", func(*Config) {}, nil},
		{"missing service", func(c *Config) { c.ServiceName = "" }, ErrMissingServiceName},
		{"bad tracing exporter", func(c *Config) {
			c.Tracing = TracingConfig{Enabled: true, Exporter: "zipkin", SamplePct: 1}
		}, ErrInvalidTracingExporter},
		{"sample pct too high", func(c *Config) {
			c.Tracing = TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5}
		}, ErrInvalidSamplePct},
		{"bad metrics exporter", func(c *Config) {
			c.Metrics = MetricsConfig{Enabled: true, Exporter: "statsd"}
		}, ErrInvalidMetricsExporter},
		{"bad log level", func(c *Config) {
			c.Logging = LoggingConfig{Enabled: true, Level: "trace"}
		}, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_DisabledNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Enabled = false

	obs, err := NewObserver(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("expected non-nil tracer, meter and logger")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestNopObserver_Middleware(t *testing.T) {
	mw, err := MiddlewareFromObserver(NopObserver())
	if err != nil {
		t.Fatalf("MiddlewareFromObserver: %v", err)
	}
	if err := mw.Run(context.Background(), OpMeta{Name: "noop"}, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Run() = %v", err)
	}
}
