package binding

import (
	"fmt"

	"github.com/randalmurphal/callhook/pkg/callhook/config"
)

// LoadFile reads a binding table from a .yaml, .yml, or .json file.
func LoadFile(path string) (*Table, error) {
	cfg, err := config.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bindings: %w", err)
	}
	return FromConfig(cfg)
}

// LoadYAML parses a binding table from YAML.
func LoadYAML(data []byte) (*Table, error) {
	cfg, err := config.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("load bindings: %w", err)
	}
	return FromConfig(cfg)
}

// LoadJSON parses a binding table from JSON.
func LoadJSON(data []byte) (*Table, error) {
	cfg, err := config.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("load bindings: %w", err)
	}
	return FromConfig(cfg)
}

// FromConfig builds a table from the "bindings" list of cfg.
//
// Each entry has a member and optional before and after lists. A list
// element is either an event name string or a map with "event" and
// "priority" keys; an empty map uses the default name.
func FromConfig(cfg config.Config) (*Table, error) {
	table := NewTable()
	for i, entry := range cfg.List("bindings") {
		member := entry.String("member", "")
		if member == "" {
			return nil, fmt.Errorf("bindings[%d]: %w", i, ErrMemberRequired)
		}

		before, err := parseList(entry.Any("before", nil))
		if err != nil {
			return nil, fmt.Errorf("bindings[%d] %s before: %w", i, member, err)
		}
		after, err := parseList(entry.Any("after", nil))
		if err != nil {
			return nil, fmt.Errorf("bindings[%d] %s after: %w", i, member, err)
		}

		if err := table.add(member, Set{Before: before, After: after}); err != nil {
			return nil, fmt.Errorf("bindings[%d] %s: %w", i, member, err)
		}
	}
	return table, nil
}

func parseList(raw any) ([]Binding, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}

	bindings := make([]Binding, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			bindings = append(bindings, Binding{Event: v})
		case nil:
			bindings = append(bindings, Binding{})
		default:
			fields, ok := config.FromValue(v)
			if !ok {
				return nil, fmt.Errorf("[%d]: unsupported binding %T", i, v)
			}
			bindings = append(bindings, Binding{
				Event:    fields.String("event", ""),
				Priority: fields.Int("priority", 0),
			})
		}
	}
	return bindings, nil
}
