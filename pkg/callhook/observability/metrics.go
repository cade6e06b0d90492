package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records callhook metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one dispatch call with the number of listeners it resolved.
	RecordDispatch(ctx context.Context, eventName string, listeners int, duration time.Duration, err error)

	// RecordListener records a single listener execution.
	RecordListener(ctx context.Context, eventName string, duration time.Duration, err error)

	// RecordInvocation records one intercepted call.
	RecordInvocation(ctx context.Context, member string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches        metric.Int64Counter
	dispatchLatency   metric.Float64Histogram
	dispatchErrors    metric.Int64Counter
	listenerRuns      metric.Int64Counter
	listenerLatency   metric.Float64Histogram
	listenerErrors    metric.Int64Counter
	invocations       metric.Int64Counter
	invocationLatency metric.Float64Histogram
	invocationErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("callhook")
	m := &otelMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.dispatches, "callhook.dispatch.count", "Number of dispatch calls"},
		{&m.dispatchErrors, "callhook.dispatch.errors", "Number of failed dispatch calls"},
		{&m.listenerRuns, "callhook.listener.executions", "Number of listener executions"},
		{&m.listenerErrors, "callhook.listener.errors", "Number of listener failures"},
		{&m.invocations, "callhook.invocation.count", "Number of intercepted calls"},
		{&m.invocationErrors, "callhook.invocation.errors", "Number of intercepted calls that failed"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.dispatchLatency, "callhook.dispatch.latency_ms", "Dispatch latency in milliseconds"},
		{&m.listenerLatency, "callhook.listener.latency_ms", "Listener latency in milliseconds"},
		{&m.invocationLatency, "callhook.invocation.latency_ms", "Intercepted call latency in milliseconds"},
	}
	for _, h := range histograms {
		hist, err := meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return nil, err
		}
		*h.dst = hist
	}

	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RecordDispatch records a dispatch call.
func (m *otelMetrics) RecordDispatch(ctx context.Context, eventName string, listeners int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.Int("listeners", listeners),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, durationMs(duration), attrs)
	if err != nil {
		m.dispatchErrors.Add(ctx, 1, attrs)
	}
}

// RecordListener records a listener execution.
func (m *otelMetrics) RecordListener(ctx context.Context, eventName string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("event", eventName))
	m.listenerRuns.Add(ctx, 1, attrs)
	m.listenerLatency.Record(ctx, durationMs(duration), attrs)
	if err != nil {
		m.listenerErrors.Add(ctx, 1, attrs)
	}
}

// RecordInvocation records an intercepted call.
func (m *otelMetrics) RecordInvocation(ctx context.Context, member string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("member", member),
		attribute.Bool("success", err == nil),
	)
	m.invocations.Add(ctx, 1, attrs)
	m.invocationLatency.Record(ctx, durationMs(duration), attrs)
	if err != nil {
		m.invocationErrors.Add(ctx, 1, attrs)
	}
}
