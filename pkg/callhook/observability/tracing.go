package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope of callhook spans.
const tracerName = "callhook"

// tracer returns the callhook tracer from the current global provider.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartInvocationSpan starts a span covering one intercepted call,
	// including its before and after notifications.
	StartInvocationSpan(ctx context.Context, member, invocationID string) (context.Context, trace.Span)

	// StartDispatchSpan starts a span for a single dispatch.
	// Nested dispatches become child spans.
	StartDispatchSpan(ctx context.Context, eventName string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartInvocationSpan starts a span for an intercepted call.
func (m *otelSpanManager) StartInvocationSpan(ctx context.Context, member, invocationID string) (context.Context, trace.Span) {
	return StartInvocationSpan(ctx, member, invocationID)
}

// StartDispatchSpan starts a span for a dispatch.
func (m *otelSpanManager) StartDispatchSpan(ctx context.Context, eventName string) (context.Context, trace.Span) {
	return StartDispatchSpan(ctx, eventName)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartInvocationSpan starts a span for an intercepted call.
// Uses the global OTel tracer.
func StartInvocationSpan(ctx context.Context, member, invocationID string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "callhook.invoke."+member,
		trace.WithAttributes(
			attribute.String("member", member),
			attribute.String("invocation.id", invocationID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartDispatchSpan starts a span for a dispatch.
// Uses the global OTel tracer.
func StartDispatchSpan(ctx context.Context, eventName string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "callhook.dispatch",
		trace.WithAttributes(
			attribute.String("event.name", eventName),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
