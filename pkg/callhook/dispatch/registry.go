package dispatch

import (
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/callhook/pkg/callhook/pattern"
)

// entry is one registration.
type entry struct {
	id       string
	pattern  string
	priority int
	seq      uint64
	listener Listener
}

// wildcardGroup holds the registrations for one wildcard pattern with its
// compiled matcher.
type wildcardGroup struct {
	matcher *pattern.Matcher
	entries []*entry
}

// Registry stores listeners keyed by exact name or wildcard pattern.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	exact    map[string][]*entry
	wildcard map[string]*wildcardGroup
	byID     map[string]*entry
	seq      uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		exact:    make(map[string][]*entry),
		wildcard: make(map[string]*wildcardGroup),
		byID:     make(map[string]*entry),
	}
}

// Add registers listener under p and returns an ID usable with Remove.
// p is treated as a wildcard pattern when it contains '*' or '{'.
func (r *Registry) Add(p string, priority int, listener Listener) (string, error) {
	if listener == nil {
		return "", ErrNilListener
	}
	if !ValidPriority(priority) {
		return "", &PriorityError{Priority: priority}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	e := &entry{
		id:       uuid.New().String(),
		pattern:  p,
		priority: priority,
		seq:      r.seq,
		listener: listener,
	}

	if pattern.IsWildcard(p) {
		group, ok := r.wildcard[p]
		if !ok {
			group = &wildcardGroup{matcher: pattern.Compile(p)}
			r.wildcard[p] = group
		}
		group.entries = append(group.entries, e)
		sortEntries(group.entries)
	} else {
		r.exact[p] = append(r.exact[p], e)
		sortEntries(r.exact[p])
	}
	r.byID[e.id] = e

	return e.id, nil
}

// Remove unregisters the listener with the given ID.
// Returns false if no such listener exists.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	if pattern.IsWildcard(e.pattern) {
		group := r.wildcard[e.pattern]
		group.entries = removeEntry(group.entries, e)
		if len(group.entries) == 0 {
			delete(r.wildcard, e.pattern)
		}
		return true
	}

	r.exact[e.pattern] = removeEntry(r.exact[e.pattern], e)
	if len(r.exact[e.pattern]) == 0 {
		delete(r.exact, e.pattern)
	}
	return true
}

// Resolve returns the listeners for name: exact registrations plus every
// wildcard pattern matching name, ordered by priority (highest first) and
// then registration order.
func (r *Registry) Resolve(name string) []Listener {
	entries := r.resolve(name)
	listeners := make([]Listener, len(entries))
	for i, e := range entries {
		listeners[i] = e.listener
	}
	return listeners
}

// resolve returns a sorted snapshot of the matching entries.
func (r *Registry) resolve(name string) []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := slices.Clone(r.exact[name])
	matched := false
	for _, group := range r.wildcard {
		if group.matcher.Matches(name) {
			result = append(result, group.entries...)
			matched = true
		}
	}
	if matched {
		sortEntries(result)
	}
	return result
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Patterns returns every registered name and pattern, sorted.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]string, 0, len(r.exact)+len(r.wildcard))
	for p := range r.exact {
		patterns = append(patterns, p)
	}
	for p := range r.wildcard {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// sortEntries orders by priority descending, then sequence ascending.
func sortEntries(entries []*entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
}

func removeEntry(entries []*entry, target *entry) []*entry {
	return slices.DeleteFunc(entries, func(e *entry) bool {
		return e == target
	})
}
