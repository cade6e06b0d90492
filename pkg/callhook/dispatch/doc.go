/*
Package dispatch implements the listener registry and the synchronous
dispatch engine.

# Listeners

A Listener receives either a *event.Event (typed dispatch, keyed by the
event's fixed Kind key) or an event.Payload (named dispatch). Listeners are
registered against an exact name or a wildcard pattern:

	d := dispatch.New()
	id, err := d.AddListener("user.*", dispatch.OnPayload(func(ctx context.Context, p event.Payload) error {
	    log.Printf("user call: %v", p.Arguments())
	    return nil
	}), dispatch.WithPriority(10))

Priorities range from -100 to 100. Higher priorities run first; equal
priorities run in registration order.

# Propagation

A listener halts further delivery of the current dispatch by returning
ErrStopPropagation, or, for typed dispatch, by calling StopPropagation on
the event. Halting is not an error: Dispatch returns the value and nil.

# Errors

Listener failures (returned errors and panics) are wrapped in *DispatchError
naming the event. Errors produced by the engine itself, including those from
nested dispatches, are returned unwrapped. WithErrorWrapping(false) returns
listener failures as-is.

# Concurrency

Dispatch runs listeners on the calling goroutine. The registry may be
modified concurrently, including from inside a listener; each dispatch works
on a snapshot of the matching listeners taken before the first one runs.
*/
package dispatch
