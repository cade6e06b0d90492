// Package audit records intercepted calls to a Store.
//
// A Recorder listens on the typed event keys, so it sees every intercepted
// call regardless of the event names its bindings use.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/callhook/pkg/callhook/event"
)

// Record is one observed notification.
type Record struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	Kind      string          `json:"kind"`
	Member    string          `json:"member"`
	Target    string          `json:"target,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecord captures evt. Arguments and results are stored as JSON; values
// that cannot be encoded are stored as their %v form.
func NewRecord(evt *event.Event) Record {
	r := Record{
		ID:        uuid.NewString(),
		EventID:   evt.ID(),
		Kind:      evt.Kind().String(),
		Member:    evt.Member(),
		Timestamp: evt.Timestamp().UTC(),
	}
	if evt.Kind().IsMethod() && evt.Target() != nil {
		r.Target = fmt.Sprintf("%T", evt.Target())
	}
	if args := evt.Arguments(); len(args) > 0 {
		r.Arguments = encode(args)
	}
	if !evt.Kind().IsBefore() {
		if evt.HasError() {
			r.Error = evt.Err().Error()
		} else if evt.Result() != nil {
			r.Result = encode(evt.Result())
		}
	}
	return r
}

// Failed reports whether the record captured a failure.
func (r Record) Failed() bool {
	return r.Error != ""
}

func encode(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprintf("%v", v))
	}
	return data
}
