package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for dispatch operations.
var (
	// ErrEmptyEventName is returned when a named dispatch is given "".
	ErrEmptyEventName = errors.New("invalid event name")

	// ErrInvalidPriority is returned when a listener priority is outside [MinPriority, MaxPriority].
	ErrInvalidPriority = errors.New("invalid event listener priority")

	// ErrPropagationAlreadyStopped is returned in strict mode when an
	// already-stopped event is dispatched.
	ErrPropagationAlreadyStopped = errors.New("event propagation was already stopped")

	// ErrStopPropagation is returned by a listener to halt delivery to the
	// remaining listeners. The dispatcher consumes it; callers never see it.
	ErrStopPropagation = errors.New("stop propagation")

	// ErrNilListener is returned when registering a nil listener.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrMaxDepthExceeded is returned when nested dispatches exceed the configured depth.
	ErrMaxDepthExceeded = errors.New("max dispatch depth exceeded")

	// ErrNilEvent is returned when Dispatch is given a nil event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNoListeners is returned in strict mode when nothing is registered for an event.
	ErrNoListeners = errors.New("no listeners found")
)

// EventNameError reports an invalid event name.
type EventNameError struct {
	Name string
}

// Error implements error interface.
func (e *EventNameError) Error() string {
	return fmt.Sprintf("invalid event name: %q", e.Name)
}

// Is reports whether target is ErrEmptyEventName.
func (e *EventNameError) Is(target error) bool {
	return target == ErrEmptyEventName
}

// PriorityError reports a listener priority outside the accepted range.
type PriorityError struct {
	Priority int
}

// Error implements error interface.
func (e *PriorityError) Error() string {
	return fmt.Sprintf("invalid event listener priority: %d", e.Priority)
}

// Is reports whether target is ErrInvalidPriority.
func (e *PriorityError) Is(target error) bool {
	return target == ErrInvalidPriority
}

// PropagationError reports dispatch of an event whose propagation was
// already stopped.
type PropagationError struct {
	EventName string
}

// Error implements error interface.
func (e *PropagationError) Error() string {
	return fmt.Sprintf("event %q propagation was already stopped", e.EventName)
}

// Is reports whether target is ErrPropagationAlreadyStopped.
func (e *PropagationError) Is(target error) bool {
	return target == ErrPropagationAlreadyStopped
}

// ListenerNotFoundError reports a dispatch with no registered listeners.
type ListenerNotFoundError struct {
	EventName string
}

// Error implements error interface.
func (e *ListenerNotFoundError) Error() string {
	return fmt.Sprintf("no listeners found for event %q", e.EventName)
}

// Is reports whether target is ErrNoListeners.
func (e *ListenerNotFoundError) Is(target error) bool {
	return target == ErrNoListeners
}

// DispatchError wraps a listener failure with the name of the event being
// dispatched.
type DispatchError struct {
	EventName string // Dispatch key or name
	Cause     any    // Original failure: the returned error or the recovered panic value
	Err       error  // Failure as an error
}

// Error implements error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("error dispatching event %q: %s", e.EventName, e.Err.Error())
}

// Unwrap returns the underlying error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// PanicError is the error form of a recovered listener panic.
type PanicError struct {
	Value any
}

// Error implements error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsEngineError reports whether err was produced by the dispatch engine
// rather than by listener code.
func IsEngineError(err error) bool {
	if err == nil {
		return false
	}
	var (
		nameErr     *EventNameError
		priorityErr *PriorityError
		propErr     *PropagationError
		notFoundErr *ListenerNotFoundError
		dispatchErr *DispatchError
	)
	return errors.As(err, &nameErr) ||
		errors.As(err, &priorityErr) ||
		errors.As(err, &propErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &dispatchErr) ||
		errors.Is(err, ErrEmptyEventName) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrPropagationAlreadyStopped) ||
		errors.Is(err, ErrNoListeners) ||
		errors.Is(err, ErrMaxDepthExceeded) ||
		errors.Is(err, ErrNilListener) ||
		errors.Is(err, ErrNilEvent)
}
