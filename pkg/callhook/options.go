package callhook

import (
	"log/slog"

	"github.com/randalmurphal/callhook/pkg/callhook/binding"
	"github.com/randalmurphal/callhook/pkg/callhook/config"
	"github.com/randalmurphal/callhook/pkg/callhook/observability"
)

// interceptorConfig holds interceptor settings.
type interceptorConfig struct {
	source  binding.Source
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

func defaultInterceptorConfig() interceptorConfig {
	return interceptorConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures an Interceptor.
type Option func(*interceptorConfig)

// WithSource sets where Method and Function look up bindings.
func WithSource(src binding.Source) Option {
	return func(c *interceptorConfig) {
		c.source = src
	}
}

// WithLogger sets the logger for invocations. A nil logger disables logging.
//
// Fault-path notification failures are only reported through this logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *interceptorConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry invocation metrics using the global
// meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *interceptorConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables an OpenTelemetry span per invocation using the
// global tracer provider. Dispatch spans nest under it when the dispatcher
// also has tracing enabled.
func WithTracing(enabled bool) Option {
	return func(c *interceptorConfig) {
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
//	metrics: false
//	tracing: false
func OptionsFromConfig(cfg config.Config) []Option {
	return []Option{
		WithMetrics(cfg.Bool("metrics", false)),
		WithTracing(cfg.Bool("tracing", false)),
	}
}
