// Package prefs persists each view's filter state between runs. The state is
// stored in its encoded query form so that a saved value and a shared link
// are the same thing.
package prefs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/storage"
)

// Store loads and saves per-view encoded state.
type Store interface {
	Load(ctx context.Context, view string) (filter.Query, error)
	Save(ctx context.Context, view string, q filter.Query) error
	Close() error
}

// Open returns the store named by target: "sqlite" (or empty) keeps state in
// db, "memory" keeps it for the life of the process, and a redis:// or
// rediss:// URL uses a Redis server.
func Open(target string, db *storage.DB) (Store, error) {
	switch {
	case target == "" || target == "sqlite":
		if db == nil {
			return nil, fmt.Errorf("sqlite state store needs an open database")
		}
		return sqliteStore{db: db}, nil
	case target == "memory":
		return NewMemory(), nil
	case strings.HasPrefix(target, "redis://"), strings.HasPrefix(target, "rediss://"):
		return NewRedis(target)
	}
	return nil, fmt.Errorf("unknown state store %q (want sqlite, memory or a redis:// URL)", target)
}

// Restore decodes the persisted state of v. Unknown or malformed entries
// fall back to the view's defaults field by field.
func Restore(ctx context.Context, s Store, v dashboard.View) (filter.State, error) {
	q, err := s.Load(ctx, v.Name)
	if err != nil {
		return v.Codec.Default(), err
	}
	return v.Codec.Decode(q), nil
}

// Persist writes the canonical encoding of state for v.
func Persist(ctx context.Context, s Store, v dashboard.View, state filter.State) error {
	return s.Save(ctx, v.Name, v.Codec.Encode(state))
}

type sqliteStore struct {
	db *storage.DB
}

func (s sqliteStore) Load(ctx context.Context, view string) (filter.Query, error) {
	return s.db.LoadState(ctx, view)
}

func (s sqliteStore) Save(ctx context.Context, view string, q filter.Query) error {
	return s.db.SaveState(ctx, view, q)
}

// Close is a no-op: the database is owned by the caller.
func (s sqliteStore) Close() error { return nil }

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	views map[string]filter.Query
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{views: make(map[string]filter.Query)}
}

func (m *Memory) Load(_ context.Context, view string) (filter.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := filter.Query{}
	for k, v := range m.views[view] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Save(_ context.Context, view string, q filter.Query) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(filter.Query, len(q))
	for k, v := range q {
		cp[k] = v
	}
	m.views[view] = cp
	return nil
}

func (m *Memory) Close() error { return nil }
