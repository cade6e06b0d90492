package dispatch

import (
	"context"

	"github.com/randalmurphal/callhook/pkg/callhook/event"
)

// Priority bounds and the default priority for listeners.
const (
	MinPriority     = -100
	MaxPriority     = 100
	DefaultPriority = 0
)

// Listener receives dispatched values.
//
// subject is a *event.Event for typed dispatch and an event.Payload for
// named dispatch. Returning ErrStopPropagation halts delivery to the
// remaining listeners; any other error aborts the dispatch.
type Listener interface {
	Handle(ctx context.Context, subject any) error
}

// ListenerFunc is a function that implements Listener.
type ListenerFunc func(ctx context.Context, subject any) error

// Handle implements Listener.
func (f ListenerFunc) Handle(ctx context.Context, subject any) error {
	return f(ctx, subject)
}

// OnEvent adapts a typed-event handler. Subjects that are not a
// *event.Event are ignored.
func OnEvent(fn func(ctx context.Context, evt *event.Event) error) Listener {
	return ListenerFunc(func(ctx context.Context, subject any) error {
		evt, ok := subject.(*event.Event)
		if !ok {
			return nil
		}
		return fn(ctx, evt)
	})
}

// OnPayload adapts a named-event handler. Subjects that are not an
// event.Payload are ignored.
func OnPayload(fn func(ctx context.Context, payload event.Payload) error) Listener {
	return ListenerFunc(func(ctx context.Context, subject any) error {
		payload, ok := subject.(event.Payload)
		if !ok {
			return nil
		}
		return fn(ctx, payload)
	})
}

// ValidPriority reports whether p is within [MinPriority, MaxPriority].
func ValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// listenerConfig holds per-registration settings.
type listenerConfig struct {
	priority int
}

// ListenerOption configures a listener registration.
type ListenerOption func(*listenerConfig)

// WithPriority sets the listener priority. Default: 0.
func WithPriority(p int) ListenerOption {
	return func(c *listenerConfig) {
		c.priority = p
	}
}
