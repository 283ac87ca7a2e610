package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Header names for the explicit trace fields carried next to the W3C
// traceparent header, matching what downstream services expect.
const (
	HeaderTraceID = "x-trace-id"
	HeaderSpanID  = "x-span-id"
)

// TraceContext is the propagatable identifier set tying together all local
// and cross-message operations of one logical request. It is captured from
// the active span and is immutable afterwards.
type TraceContext struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// Valid reports whether the context carries a usable trace id.
func (tc TraceContext) Valid() bool {
	return tc.TraceID != ""
}

// ContextFrom captures the trace context of the currently active span. The
// zero TraceContext is returned when no span is active.
func ContextFrom(ctx context.Context) TraceContext {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceContext{}
	}
	return TraceContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
		Sampled: sc.IsSampled(),
	}
}

// mapCarrier adapts message headers to the OpenTelemetry propagation API.
type mapCarrier map[string]string

func (c mapCarrier) Get(key string) string { return c[key] }

func (c mapCarrier) Set(key, value string) { c[key] = value }

func (c mapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Inject writes the active trace context into headers, both as a W3C
// traceparent and as the explicit x-trace-id/x-span-id pair.
func Inject(ctx context.Context, headers map[string]string) {
	otel.GetTextMapPropagator().Inject(ctx, mapCarrier(headers))

	if tc := ContextFrom(ctx); tc.Valid() {
		headers[HeaderTraceID] = tc.TraceID
		headers[HeaderSpanID] = tc.SpanID
	}
}

// Extract returns a context carrying the remote trace context found in
// headers. Falls back to the explicit x-trace-id/x-span-id pair when no
// traceparent is present; spans started from the returned context become
// roots of a fresh trace when the headers carry nothing usable.
func Extract(ctx context.Context, headers map[string]string) context.Context {
	extracted := otel.GetTextMapPropagator().Extract(ctx, mapCarrier(headers))
	if trace.SpanContextFromContext(extracted).IsValid() {
		return extracted
	}

	traceID, err := trace.TraceIDFromHex(headers[HeaderTraceID])
	if err != nil {
		return ctx
	}
	spanID, err := trace.SpanIDFromHex(headers[HeaderSpanID])
	if err != nil {
		return ctx
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithSpanContext(ctx, sc)
}

// RecordSpanError marks the span as failed and records the error on it.
// Every span that observes an error goes through here before it ends,
// whether or not the error is surfaced to the caller.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
