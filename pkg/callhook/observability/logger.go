// Package observability provides structured logging, metrics, and tracing
// for callhook dispatchers and interceptors.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds invocation context to a logger.
// Returns a new logger with member and invocation_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "CreateUser", "4f1c...")
//	enriched.Info("calling") // includes member, invocation_id
func EnrichLogger(logger *slog.Logger, member, invocationID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("member", member),
		slog.String("invocation_id", invocationID),
	)
}

// LogListenerAdded logs a listener registration.
func LogListenerAdded(logger *slog.Logger, pattern string, priority int, id string) {
	if logger == nil {
		return
	}
	logger.Debug("listener added",
		slog.String("pattern", pattern),
		slog.Int("priority", priority),
		slog.String("listener_id", id),
	)
}

// LogDispatch logs a completed dispatch.
func LogDispatch(logger *slog.Logger, key string, listeners int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("event", key),
		slog.Int("listeners", listeners),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatchStopped logs a dispatch that ended early.
func LogDispatchStopped(logger *slog.Logger, key string, invoked, total int) {
	if logger == nil {
		return
	}
	logger.Debug("event propagation stopped",
		slog.String("event", key),
		slog.Int("invoked", invoked),
		slog.Int("listeners", total),
	)
}

// LogDispatchError logs a dispatch that failed.
func LogDispatchError(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	logger.Error("event dispatch failed",
		slog.String("event", key),
		slog.String("error", err.Error()),
	)
}

// LogInvocationStart logs the start of an intercepted call.
func LogInvocationStart(logger *slog.Logger, member string, args int) {
	if logger == nil {
		return
	}
	logger.Debug("invocation starting",
		slog.String("member", member),
		slog.Int("arguments", args),
	)
}

// LogInvocationComplete logs a successful intercepted call.
func LogInvocationComplete(logger *slog.Logger, member string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("invocation completed",
		slog.String("member", member),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogInvocationError logs an intercepted call that failed.
func LogInvocationError(logger *slog.Logger, member string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("invocation failed",
		slog.String("member", member),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNotificationDropped logs an after-phase dispatch error that was
// discarded so the original failure could be returned unchanged.
func LogNotificationDropped(logger *slog.Logger, member, eventName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("notification failed on fault path",
		slog.String("member", member),
		slog.String("event", eventName),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
