package event

// Envelope keys used by the interceptor for named dispatches.
const (
	FieldEvent     = "event"
	FieldTarget    = "target"
	FieldMember    = "member"
	FieldArguments = "arguments"
	FieldResult    = "result"
	FieldException = "exception"
)

// Payload is the mutable mapping passed to listeners of a named dispatch.
// It is shared by reference: writes by one listener are visible to later
// listeners and to the caller.
type Payload map[string]any

// NewEnvelope builds the payload for a named dispatch of evt.
// The target is included only for method kinds; after kinds carry either
// the result or the exception.
func NewEnvelope(evt *Event) Payload {
	p := Payload{
		FieldEvent:     evt,
		FieldMember:    evt.Member(),
		FieldArguments: evt.Arguments(),
	}
	if evt.Kind().IsMethod() {
		p[FieldTarget] = evt.Target()
	}
	if !evt.Kind().IsBefore() {
		if evt.HasError() {
			p[FieldException] = evt.Err()
		} else {
			p[FieldResult] = evt.Result()
		}
	}
	return p
}

// Event returns the structured event stored in the envelope, if any.
func (p Payload) Event() (*Event, bool) {
	evt, ok := p[FieldEvent].(*Event)
	return evt, ok && evt != nil
}

// Arguments returns the argument snapshot stored in the envelope.
func (p Payload) Arguments() []any {
	args, _ := p[FieldArguments].([]any)
	return args
}

// Result returns the return value stored in the envelope, or nil.
func (p Payload) Result() any {
	return p[FieldResult]
}

// Exception returns the failure stored in the envelope, if any.
func (p Payload) Exception() error {
	err, _ := p[FieldException].(error)
	return err
}

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value for key, or "" if missing or not a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the bool value for key, or false if missing or not a bool.
func (p Payload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}
