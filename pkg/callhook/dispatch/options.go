package dispatch

import (
	"log/slog"

	"github.com/randalmurphal/callhook/pkg/callhook/config"
	"github.com/randalmurphal/callhook/pkg/callhook/observability"
)

// DefaultMaxDepth is the default limit on nested dispatches.
const DefaultMaxDepth = 64

// dispatchConfig holds dispatcher settings.
type dispatchConfig struct {
	wrapErrors       bool
	rejectStopped    bool
	requireListeners bool
	maxDepth         int
	logger           *slog.Logger
	metrics          observability.MetricsRecorder
	spans            observability.SpanManager
}

func defaultDispatchConfig() dispatchConfig {
	return dispatchConfig{
		wrapErrors: true,
		maxDepth:   DefaultMaxDepth,
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
}

// Option configures a Dispatcher.
type Option func(*dispatchConfig)

// WithErrorWrapping controls whether listener failures are wrapped in
// *DispatchError. Default: true
func WithErrorWrapping(enabled bool) Option {
	return func(c *dispatchConfig) {
		c.wrapErrors = enabled
	}
}

// WithRejectStopped makes Dispatch fail with *PropagationError when the
// event's propagation was already stopped. By default such events are
// returned unchanged without invoking any listener.
func WithRejectStopped(enabled bool) Option {
	return func(c *dispatchConfig) {
		c.rejectStopped = enabled
	}
}

// WithRequireListeners makes dispatch fail with *ListenerNotFoundError
// when nothing is registered for the event.
func WithRequireListeners(enabled bool) Option {
	return func(c *dispatchConfig) {
		c.requireListeners = enabled
	}
}

// WithMaxDepth sets the maximum number of nested dispatches.
// Default: 64
//
// A listener that dispatches, directly or through an intercepted call,
// nests one level deeper. Exceeding the limit fails with ErrMaxDepthExceeded.
func WithMaxDepth(n int) Option {
	return func(c *dispatchConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithLogger sets the logger for dispatch events. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dispatchConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *dispatchConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *dispatchConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// OptionsFromConfig builds options from a configuration section.
//
// Recognized keys:
//
//	wrap_errors: true
//	reject_stopped: false
//	require_listeners: false
//	max_depth: 64
//	metrics: false
//	tracing: false
//
// Missing keys keep the defaults.
func OptionsFromConfig(cfg config.Config) []Option {
	opts := []Option{
		WithErrorWrapping(cfg.Bool("wrap_errors", true)),
		WithRejectStopped(cfg.Bool("reject_stopped", false)),
		WithRequireListeners(cfg.Bool("require_listeners", false)),
		WithMaxDepth(cfg.Int("max_depth", DefaultMaxDepth)),
	}
	if cfg.Bool("metrics", false) {
		opts = append(opts, WithMetrics(true))
	}
	if cfg.Bool("tracing", false) {
		opts = append(opts, WithTracing(true))
	}
	return opts
}
