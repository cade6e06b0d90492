package event

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the variant of an Event.
type Kind int

const (
	// KindBeforeMethod is emitted before a method runs.
	KindBeforeMethod Kind = iota

	// KindAfterMethod is emitted after a method returns or fails.
	KindAfterMethod

	// KindBeforeFunction is emitted before a function runs.
	KindBeforeFunction

	// KindAfterFunction is emitted after a function returns or fails.
	KindAfterFunction
)

// Fixed dispatch keys, one per Kind.
const (
	KeyBeforeMethod   = "callhook:before_method"
	KeyAfterMethod    = "callhook:after_method"
	KeyBeforeFunction = "callhook:before_function"
	KeyAfterFunction  = "callhook:after_function"
)

// Kinds lists every Kind in declaration order.
var Kinds = []Kind{KindBeforeMethod, KindAfterMethod, KindBeforeFunction, KindAfterFunction}

// Key returns the dispatch key for the kind.
func (k Kind) Key() string {
	switch k {
	case KindBeforeMethod:
		return KeyBeforeMethod
	case KindAfterMethod:
		return KeyAfterMethod
	case KindBeforeFunction:
		return KeyBeforeFunction
	case KindAfterFunction:
		return KeyAfterFunction
	default:
		return "callhook.unknown"
	}
}

// String returns a short kind name.
func (k Kind) String() string {
	switch k {
	case KindBeforeMethod:
		return "before_method"
	case KindAfterMethod:
		return "after_method"
	case KindBeforeFunction:
		return "before_function"
	case KindAfterFunction:
		return "after_function"
	default:
		return "unknown"
	}
}

// IsBefore reports whether the kind is a before notification.
func (k Kind) IsBefore() bool {
	return k == KindBeforeMethod || k == KindBeforeFunction
}

// IsMethod reports whether the kind carries a target.
func (k Kind) IsMethod() bool {
	return k == KindBeforeMethod || k == KindAfterMethod
}

// Event is a snapshot of one before/after notification point.
// All fields except the propagation flag are fixed at construction.
type Event struct {
	id        string
	kind      Kind
	target    any
	member    string
	args      []any
	result    any
	err       error
	timestamp time.Time

	stopped atomic.Bool
}

func newEvent(kind Kind, target any, member string, args []any) *Event {
	return &Event{
		id:        uuid.New().String(),
		kind:      kind,
		target:    target,
		member:    member,
		args:      slices.Clone(args),
		timestamp: time.Now(),
	}
}

// NewBeforeMethod creates a before notification for a method call.
func NewBeforeMethod(target any, member string, args []any) *Event {
	return newEvent(KindBeforeMethod, target, member, args)
}

// NewAfterMethod creates an after notification for a method call.
// If err is non-nil the result is discarded.
func NewAfterMethod(target any, member string, args []any, result any, err error) *Event {
	e := newEvent(KindAfterMethod, target, member, args)
	e.setOutcome(result, err)
	return e
}

// NewBeforeFunction creates a before notification for a function call.
func NewBeforeFunction(member string, args []any) *Event {
	return newEvent(KindBeforeFunction, nil, member, args)
}

// NewAfterFunction creates an after notification for a function call.
// If err is non-nil the result is discarded.
func NewAfterFunction(member string, args []any, result any, err error) *Event {
	e := newEvent(KindAfterFunction, nil, member, args)
	e.setOutcome(result, err)
	return e
}

// setOutcome keeps result and err mutually exclusive.
func (e *Event) setOutcome(result any, err error) {
	if err != nil {
		e.err = err
		return
	}
	e.result = result
}

// ID returns the unique event identifier.
func (e *Event) ID() string {
	return e.id
}

// Kind returns the event variant.
func (e *Event) Kind() Kind {
	return e.kind
}

// Key returns the fixed dispatch key of the event's kind.
func (e *Event) Key() string {
	return e.kind.Key()
}

// Target returns the receiver of a method call, or nil for functions.
func (e *Event) Target() any {
	return e.target
}

// Member returns the method or function name.
func (e *Event) Member() string {
	return e.member
}

// Arguments returns a copy of the argument snapshot.
func (e *Event) Arguments() []any {
	return slices.Clone(e.args)
}

// Result returns the call result. It is nil for before kinds and failed calls.
func (e *Event) Result() any {
	return e.result
}

// Err returns the call failure. It is nil for before kinds and successful calls.
func (e *Event) Err() error {
	return e.err
}

// HasError reports whether the call failed.
func (e *Event) HasError() bool {
	return e.err != nil
}

// Timestamp returns when the event was created.
func (e *Event) Timestamp() time.Time {
	return e.timestamp
}

// StopPropagation prevents remaining listeners from seeing the event.
// The flag cannot be cleared.
func (e *Event) StopPropagation() {
	e.stopped.Store(true)
}

// IsPropagationStopped reports whether StopPropagation has been called.
func (e *Event) IsPropagationStopped() bool {
	return e.stopped.Load()
}
