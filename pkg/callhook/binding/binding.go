package binding

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/randalmurphal/callhook/pkg/callhook/dispatch"
)

// Default event name suffixes used when a binding has no override.
const (
	BeforeSuffix = ".before"
	AfterSuffix  = ".after"
)

// ErrMemberRequired is returned when a binding entry names no member.
var ErrMemberRequired = errors.New("binding member is required")

// Binding associates a callable with one named event.
type Binding struct {
	Event    string // Event name override; empty means the default name
	Priority int    // In [dispatch.MinPriority, dispatch.MaxPriority]
}

// Validate checks the priority range.
func (b Binding) Validate() error {
	if !dispatch.ValidPriority(b.Priority) {
		return &dispatch.PriorityError{Priority: b.Priority}
	}
	return nil
}

// Name returns the event name, falling back to member+suffix.
func (b Binding) Name(member, suffix string) string {
	if b.Event != "" {
		return b.Event
	}
	return member + suffix
}

// Set is the ordered before and after bindings of one callable.
type Set struct {
	Before []Binding
	After  []Binding
}

// Empty reports whether the set has no bindings.
func (s Set) Empty() bool {
	return len(s.Before) == 0 && len(s.After) == 0
}

// Validate checks every binding in the set.
func (s Set) Validate() error {
	for i, b := range s.Before {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("before[%d]: %w", i, err)
		}
	}
	for i, b := range s.After {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("after[%d]: %w", i, err)
		}
	}
	return nil
}

// Before builds a Set with the given before bindings.
func Before(bindings ...Binding) Set {
	return Set{Before: bindings}
}

// After builds a Set with the given after bindings.
func After(bindings ...Binding) Set {
	return Set{After: bindings}
}

// Around builds a Set with one default-named before binding and one
// default-named after binding.
func Around() Set {
	return Set{Before: []Binding{{}}, After: []Binding{{}}}
}

// Source supplies the bindings for a callable.
type Source interface {
	Bindings(member string) (Set, bool)
}

// SourceFunc is a function that implements Source.
type SourceFunc func(member string) (Set, bool)

// Bindings implements Source.
func (f SourceFunc) Bindings(member string) (Set, bool) {
	return f(member)
}

// QualifiedName returns "<Type>.<member>" for target's named type
// (pointers are dereferenced), or member when the type is unnamed.
func QualifiedName(target any, member string) string {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return member
	}
	return t.Name() + "." + member
}
