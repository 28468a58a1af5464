package otelx

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")
	t.Setenv("DEPLOY_ENV", "staging")

	cfg := ConfigFromEnv("booking-service")
	if !cfg.Enabled || cfg.Endpoint != "collector:4317" || cfg.SampleRatio != 0.25 || cfg.Environment != "staging" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("OTEL_SAMPLING_RATIO", "7")
	if cfg := ConfigFromEnv("x"); cfg.SampleRatio != 1 {
		t.Fatalf("out of range ratio should fall back to 1, got %v", cfg.SampleRatio)
	}
}

func TestResourceNamesService(t *testing.T) {
	res := Config{Service: "account-service", Version: "1.2.0", Environment: "prod"}.Resource()
	want := map[string]string{
		string(semconv.ServiceNameKey):      "account-service",
		string(semconv.ServiceNamespaceKey): Namespace,
		string(semconv.ServiceVersionKey):   "1.2.0",
	}
	for _, kv := range res.Attributes() {
		if v, ok := want[string(kv.Key)]; ok {
			if kv.Value.AsString() != v {
				t.Fatalf("%s: expected %q, got %q", kv.Key, v, kv.Value.AsString())
			}
			delete(want, string(kv.Key))
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing resource attributes %v", want)
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, Service: "test"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestStoredTraceRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if got := CaptureTrace(context.Background()); !got.Empty() {
		t.Fatalf("expected empty trace without a span, got %+v", got)
	}
	ctx := context.Background()
	if (StoredTrace{}).Resume(ctx) != ctx {
		t.Fatal("empty trace must leave the context unchanged")
	}

	stored := StoredTrace{Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
	sc := trace.SpanContextFromContext(stored.Resume(ctx))
	if !sc.IsRemote() || sc.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("unexpected span context %+v", sc)
	}
	if again := CaptureTrace(stored.Resume(ctx)); again.Traceparent != stored.Traceparent {
		t.Fatalf("expected %q, got %q", stored.Traceparent, again.Traceparent)
	}
}
