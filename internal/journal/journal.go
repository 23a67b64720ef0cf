// Package journal records one entry per file outcome of every lessonkit run,
// so a site pass can be audited or compared after the fact.
//
// Backends register themselves by kind from an init function; import
// lessonkit/internal/journal/all to link every backend.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Table is the journal table name used by every backend.
const Table = "lessonkit_journal"

// Columns lists the journal columns in insert order. The id column is
// generated by the backend.
var Columns = []string{
	"run_id", "tool", "file", "status", "detail",
	"sha256_before", "sha256_after", "size_before", "size_after",
	"written", "recorded_at",
}

// ErrUnsupportedKind is returned by Open for an unregistered kind.
var ErrUnsupportedKind = errors.New("journal: unsupported kind")

// Entry is one file outcome.
type Entry struct {
	ID           int64
	RunID        string
	Tool         string
	File         string
	Status       string
	Detail       string
	SHA256Before string
	SHA256After  string
	SizeBefore   int64
	SizeAfter    int64
	Written      bool
	RecordedAt   time.Time
}

// Values returns e in Columns order.
func (e Entry) Values() []any {
	return []any{
		e.RunID, e.Tool, e.File, e.Status, e.Detail,
		e.SHA256Before, e.SHA256After, e.SizeBefore, e.SizeAfter,
		e.Written, e.RecordedAt.UTC(),
	}
}

// Repository is implemented by each backend.
type Repository interface {
	// Close releases backend resources. Call once.
	Close()

	// EnsureSchema creates the journal table if it is missing.
	EnsureSchema(ctx context.Context) error

	// Append stores entries in one round trip or transaction.
	Append(ctx context.Context, entries []Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Config selects a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It panics on an empty kind,
// a nil factory or a duplicate registration.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("journal: Register called with empty kind")
	}
	if f == nil {
		panic("journal: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("journal: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Kinds lists the registered kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open constructs the Repository for cfg.Kind and ensures its schema.
func Open(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.Kind)
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", cfg.Kind, err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("journal: ensure schema: %w", err)
	}
	return repo, nil
}
