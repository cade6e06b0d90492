package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/callhook/pkg/callhook/config"
)

// Store persists call records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a record. Records keep insertion order.
	Append(ctx context.Context, r Record) error

	// List returns records matching the filter in insertion order.
	// Returns empty slice (not error) if nothing matches.
	List(ctx context.Context, f Filter) ([]Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Purge removes all records.
	Purge(ctx context.Context) error

	// Close releases any resources (connections, files).
	Close() error
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Member string
	Kind   string
	Failed bool // only records with an error
	Limit  int  // most recent N when > 0
}

func (f Filter) match(r Record) bool {
	if f.Member != "" && r.Member != f.Member {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.Failed && !r.Failed() {
		return false
	}
	return true
}

// Sentinel errors for audit operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("audit store closed")
)

// OpenStore creates a store from a configuration section.
//
//	driver: sqlite   # or memory (default)
//	path: ./audit.db
func OpenStore(cfg config.Config) (Store, error) {
	switch driver := cfg.String("driver", "memory"); driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.String("path", ":memory:"))
	default:
		return nil, fmt.Errorf("unknown audit driver: %s", driver)
	}
}
