package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a Store kept in process memory.
// Used by `calc --memory` sessions and by tests.
//
// Thread-safety: all methods are serialised by an internal mutex, so List
// is linearizable with respect to Append, Delete and DeleteAll.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry // insertion order
	ids     IDGenerator
}

// NewMemoryStore creates an empty store. A nil generator defaults to UUIDv7.
func NewMemoryStore(ids IDGenerator) *MemoryStore {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &MemoryStore{ids: ids}
}

// Append records a new entry and returns its id.
func (m *MemoryStore) Append(ctx context.Context, expression string, ts time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewStorageError("append", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.ids.Generate()
	m.entries = append(m.entries, Entry{ID: id, Expression: expression, Timestamp: ts})
	return id, nil
}

// List returns entries newest first; equal timestamps keep the most
// recently appended entry first.
func (m *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError("list", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, m.entries[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Get returns the entry with the given id or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, id string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, NewStorageError("get", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Delete removes the entry with the given id. Missing ids are ignored.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError("delete", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// DeleteAll removes every entry.
func (m *MemoryStore) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError("delete all", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}

// Count returns the number of live entries.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, NewStorageError("count", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries), nil
}
