package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	headerTraceparent = "traceparent"
	headerTracestate  = "tracestate"
)

// StoredTrace is a W3C trace context kept next to a persisted record, such as an
// outbox row, so the span that wrote the record can be continued when it is relayed.
type StoredTrace struct {
	Traceparent string
	Tracestate  string
}

// CaptureTrace snapshots the span in ctx. It is empty when ctx carries no span.
func CaptureTrace(ctx context.Context) StoredTrace {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return StoredTrace{Traceparent: carrier[headerTraceparent], Tracestate: carrier[headerTracestate]}
}

func (t StoredTrace) Empty() bool {
	return t.Traceparent == ""
}

// Resume returns ctx with t as the remote parent. An empty t leaves ctx unchanged.
func (t StoredTrace) Resume(ctx context.Context) context.Context {
	if t.Empty() {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
		headerTraceparent: t.Traceparent,
		headerTracestate:  t.Tracestate,
	})
}
