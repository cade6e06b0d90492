package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/randalmurphal/callhook/pkg/callhook/dispatch"
	"github.com/randalmurphal/callhook/pkg/callhook/event"
)

// Recorder appends a Record to its Store for every typed event dispatched
// through a Dispatcher.
type Recorder struct {
	store    Store
	d        *dispatch.Dispatcher
	logger   *slog.Logger
	priority int
	strict   bool

	mu  sync.Mutex
	ids []string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithPriority sets the listener priority. Defaults to dispatch.MinPriority
// so the recorder sees the event after application listeners.
func WithPriority(p int) RecorderOption {
	return func(r *Recorder) {
		r.priority = p
	}
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithStrict makes store failures fail the dispatch instead of being logged.
func WithStrict(strict bool) RecorderOption {
	return func(r *Recorder) {
		r.strict = strict
	}
}

// Attach registers a Recorder on every typed event key of d.
func Attach(d *dispatch.Dispatcher, store Store, opts ...RecorderOption) (*Recorder, error) {
	if d == nil || store == nil {
		return nil, fmt.Errorf("audit: dispatcher and store are required")
	}

	r := &Recorder{
		store:    store,
		d:        d,
		priority: dispatch.MinPriority,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range event.Kinds {
		id, err := d.AddListener(kind.Key(), dispatch.OnEvent(r.record), dispatch.WithPriority(r.priority))
		if err != nil {
			for _, added := range r.ids {
				d.RemoveListener(added)
			}
			r.ids = nil
			return nil, fmt.Errorf("audit: attach %s: %w", kind.Key(), err)
		}
		r.ids = append(r.ids, id)
	}
	return r, nil
}

// Detach removes the recorder's listeners. The store is left open.
func (r *Recorder) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ids {
		r.d.RemoveListener(id)
	}
	r.ids = nil
}

// Store returns the underlying store.
func (r *Recorder) Store() Store {
	return r.store
}

func (r *Recorder) record(ctx context.Context, evt *event.Event) error {
	rec := NewRecord(evt)
	if err := r.store.Append(ctx, rec); err != nil {
		if r.strict {
			return fmt.Errorf("audit: %w", err)
		}
		if r.logger != nil {
			r.logger.Warn("audit record dropped",
				slog.String("member", rec.Member),
				slog.String("kind", rec.Kind),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
