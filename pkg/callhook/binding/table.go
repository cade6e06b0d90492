package binding

import (
	"slices"
	"sort"
	"sync"
)

// Table is a thread-safe Source keyed by member name.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Set
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]Set),
	}
}

// Register sets the bindings for member, replacing any existing set.
func (t *Table) Register(member string, set Set) error {
	if member == "" {
		return ErrMemberRequired
	}
	if err := set.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[member] = Set{
		Before: slices.Clone(set.Before),
		After:  slices.Clone(set.After),
	}
	return nil
}

// Before appends before bindings for member.
func (t *Table) Before(member string, bindings ...Binding) error {
	return t.add(member, Set{Before: bindings})
}

// After appends after bindings for member.
func (t *Table) After(member string, bindings ...Binding) error {
	return t.add(member, Set{After: bindings})
}

func (t *Table) add(member string, set Set) error {
	if member == "" {
		return ErrMemberRequired
	}
	if err := set.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.entries[member]
	t.entries[member] = Set{
		Before: append(slices.Clone(current.Before), set.Before...),
		After:  append(slices.Clone(current.After), set.After...),
	}
	return nil
}

// Bindings implements Source.
func (t *Table) Bindings(member string) (Set, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set, ok := t.entries[member]
	return set, ok
}

// Has returns true if member has bindings.
func (t *Table) Has(member string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[member]
	return ok
}

// Delete removes the bindings for member.
func (t *Table) Delete(member string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, member)
}

// Members returns all members with bindings, sorted.
func (t *Table) Members() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members := make([]string, 0, len(t.entries))
	for m := range t.entries {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// Len returns the number of members with bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Merge copies every entry of other into t, replacing existing members.
func (t *Table) Merge(other *Table) {
	if other == nil || other == t {
		return
	}
	other.mu.RLock()
	snapshot := make(map[string]Set, len(other.entries))
	for k, v := range other.entries {
		snapshot[k] = v
	}
	other.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range snapshot {
		t.entries[k] = v
	}
}
