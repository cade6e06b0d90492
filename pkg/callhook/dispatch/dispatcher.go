package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/callhook/pkg/callhook/event"
	"github.com/randalmurphal/callhook/pkg/callhook/observability"
)

// Dispatcher delivers events to registered listeners synchronously.
type Dispatcher struct {
	registry *Registry
	cfg      dispatchConfig
}

// New creates a Dispatcher with an empty registry.
func New(opts ...Option) *Dispatcher {
	cfg := defaultDispatchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		registry: NewRegistry(),
		cfg:      cfg,
	}
}

// Registry returns the dispatcher's listener registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// AddListener registers listener for an event name or wildcard pattern.
// Returns the registration ID.
func (d *Dispatcher) AddListener(p string, listener Listener, opts ...ListenerOption) (string, error) {
	lc := listenerConfig{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&lc)
	}

	id, err := d.registry.Add(p, lc.priority, listener)
	if err != nil {
		return "", err
	}
	observability.LogListenerAdded(d.cfg.logger, p, lc.priority, id)
	return id, nil
}

// AddListenerFunc registers a plain function as a listener.
func (d *Dispatcher) AddListenerFunc(p string, fn func(ctx context.Context, subject any) error, opts ...ListenerOption) (string, error) {
	if fn == nil {
		return "", ErrNilListener
	}
	return d.AddListener(p, ListenerFunc(fn), opts...)
}

// RemoveListener unregisters a listener by ID.
// Returns false if the ID is unknown.
func (d *Dispatcher) RemoveListener(id string) bool {
	return d.registry.Remove(id)
}

// ListenersFor returns the listeners that a dispatch of name would invoke,
// in invocation order.
func (d *Dispatcher) ListenersFor(name string) []Listener {
	return d.registry.Resolve(name)
}

// HasListeners reports whether any listener matches name.
func (d *Dispatcher) HasListeners(name string) bool {
	return len(d.registry.resolve(name)) > 0
}

// Patterns returns every registered name and pattern.
func (d *Dispatcher) Patterns() []string {
	return d.registry.Patterns()
}

// Dispatch delivers evt to the listeners registered for its Kind key and
// returns it. Delivery stops early when a listener returns
// ErrStopPropagation or stops the event's propagation.
//
// An event whose propagation is already stopped is returned without
// invoking any listener, or rejected with *PropagationError when the
// dispatcher was built WithRejectStopped.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *event.Event) (*event.Event, error) {
	if evt == nil {
		return nil, ErrNilEvent
	}
	key := evt.Key()
	if evt.IsPropagationStopped() {
		if d.cfg.rejectStopped {
			return evt, &PropagationError{EventName: key}
		}
		return evt, nil
	}
	return evt, d.run(ctx, key, evt, evt.IsPropagationStopped)
}

// DispatchNamed delivers payload to the listeners registered for name and
// returns it. All listeners share the same map, so changes made by one are
// visible to the next and to the caller. A nil payload is replaced by an
// empty one.
func (d *Dispatcher) DispatchNamed(ctx context.Context, name string, payload event.Payload) (event.Payload, error) {
	if name == "" {
		return payload, &EventNameError{Name: name}
	}
	if payload == nil {
		payload = event.Payload{}
	}
	return payload, d.run(ctx, name, payload, nil)
}

// run invokes the listeners for name in order. stopped, when non-nil, is
// checked after each listener.
func (d *Dispatcher) run(ctx context.Context, name string, subject any, stopped func() bool) (err error) {
	depth := dispatchDepth(ctx)
	if depth >= d.cfg.maxDepth {
		return fmt.Errorf("%w (%d) at %q", ErrMaxDepthExceeded, d.cfg.maxDepth, name)
	}
	ctx = withDispatchDepth(ctx, depth+1)

	entries := d.registry.resolve(name)
	if len(entries) == 0 && d.cfg.requireListeners {
		return &ListenerNotFoundError{EventName: name}
	}

	ctx, span := d.cfg.spans.StartDispatchSpan(ctx, name)
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		d.cfg.spans.EndSpanWithError(span, err)
		d.cfg.metrics.RecordDispatch(ctx, name, len(entries), elapsed, err)
		if err != nil {
			observability.LogDispatchError(d.cfg.logger, name, err)
			return
		}
		observability.LogDispatch(d.cfg.logger, name, len(entries), float64(elapsed.Microseconds())/1000)
	}()

	for i, e := range entries {
		lerr := d.invoke(ctx, name, e, subject)
		if errors.Is(lerr, ErrStopPropagation) {
			d.stopped(ctx, name, i+1, len(entries))
			return nil
		}
		if lerr != nil {
			return lerr
		}
		if stopped != nil && stopped() {
			d.stopped(ctx, name, i+1, len(entries))
			return nil
		}
	}
	return nil
}

func (d *Dispatcher) stopped(ctx context.Context, name string, invoked, total int) {
	observability.LogDispatchStopped(d.cfg.logger, name, invoked, total)
	d.cfg.spans.AddSpanEvent(ctx, "propagation_stopped",
		attribute.Int("invoked", invoked),
		attribute.Int("listeners", total),
	)
}

// invoke runs a single listener, converting panics and foreign errors
// into dispatch failures.
func (d *Dispatcher) invoke(ctx context.Context, name string, e *entry, subject any) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = d.fault(name, r, &PanicError{Value: r})
		}
		recorded := err
		if errors.Is(err, ErrStopPropagation) {
			recorded = nil
		}
		d.cfg.metrics.RecordListener(ctx, name, time.Since(start), recorded)
	}()

	if err := e.listener.Handle(ctx, subject); err != nil {
		if errors.Is(err, ErrStopPropagation) {
			return err
		}
		return d.fault(name, err, err)
	}
	return nil
}

// fault converts a listener failure into the error returned from dispatch.
// cause is what the listener raised (an error or a recovered panic value).
// Engine errors pass through.
func (d *Dispatcher) fault(name string, cause any, err error) error {
	if IsEngineError(err) || !d.cfg.wrapErrors {
		return err
	}
	return &DispatchError{EventName: name, Cause: cause, Err: err}
}

// Context keys for dispatch depth tracking
type contextKey string

const dispatchDepthKey contextKey = "dispatch_depth"

func dispatchDepth(ctx context.Context) int {
	if v, ok := ctx.Value(dispatchDepthKey).(int); ok {
		return v
	}
	return 0
}

func withDispatchDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, dispatchDepthKey, depth)
}
