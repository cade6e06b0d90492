package callhook

import (
	"slices"

	"github.com/randalmurphal/callhook/pkg/callhook/binding"
	"github.com/randalmurphal/callhook/pkg/callhook/event"
)

// Site identifies an intercepted callable and its bindings.
type Site struct {
	Target   any
	Member   string
	Bindings binding.Set
	method   bool
}

// MethodSite describes member called on target.
func MethodSite(target any, member string, set binding.Set) Site {
	return Site{Target: target, Member: member, Bindings: cloneSet(set), method: true}
}

// FunctionSite describes a free function.
func FunctionSite(member string, set binding.Set) Site {
	return Site{Member: member, Bindings: cloneSet(set)}
}

// IsMethod reports whether the site has a target.
func (s Site) IsMethod() bool {
	return s.method
}

func (s Site) beforeEvent(args []any) *event.Event {
	if s.method {
		return event.NewBeforeMethod(s.Target, s.Member, args)
	}
	return event.NewBeforeFunction(s.Member, args)
}

func (s Site) afterEvent(args []any, result any, err error) *event.Event {
	if s.method {
		return event.NewAfterMethod(s.Target, s.Member, args, result, err)
	}
	return event.NewAfterFunction(s.Member, args, result, err)
}

func cloneSet(set binding.Set) binding.Set {
	return binding.Set{
		Before: slices.Clone(set.Before),
		After:  slices.Clone(set.After),
	}
}
