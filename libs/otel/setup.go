package otelx

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Namespace groups every bookingcrown service under one resource namespace and
// prefixes tracer names.
const Namespace = "bookingcrown"

// Config describes where a service sends its spans.
type Config struct {
	Enabled     bool
	Service     string
	Version     string
	Environment string
	Endpoint    string // OTLP/gRPC host:port
	SampleRatio float64
}

// ConfigFromEnv reads OTEL_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_SAMPLING_RATIO,
// SERVICE_VERSION and DEPLOY_ENV. Tracing is off unless OTEL_ENABLED is set.
func ConfigFromEnv(service string) Config {
	cfg := Config{
		Enabled:     config.Bool("OTEL_ENABLED", false),
		Service:     service,
		Version:     config.String("SERVICE_VERSION", "dev"),
		Environment: config.String("DEPLOY_ENV", "local"),
		Endpoint:    config.String("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		SampleRatio: 1,
	}
	for _, scheme := range []string{"http://", "https://"} {
		cfg.Endpoint = strings.TrimPrefix(cfg.Endpoint, scheme)
	}
	if ratio, err := strconv.ParseFloat(config.String("OTEL_SAMPLING_RATIO", "1"), 64); err == nil && ratio >= 0 && ratio <= 1 {
		cfg.SampleRatio = ratio
	}
	return cfg
}

// Resource identifies the service on every exported span.
func (c Config) Resource() *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceName(c.Service),
		semconv.ServiceNamespace(Namespace),
		semconv.ServiceVersion(c.Version),
		semconv.DeploymentEnvironment(c.Environment),
	)
}

// Setup installs the W3C propagators and, when enabled, a batching OTLP tracer
// provider. The returned func flushes pending spans on shutdown.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(3*time.Second),
	)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(resource.Default(), cfg.Resource())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the tracer for one component, e.g. Tracer("conflict").
func Tracer(component string) trace.Tracer {
	return otel.Tracer(Namespace + "/" + component)
}
