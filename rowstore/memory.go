package rowstore

import (
	"context"
	"sort"
	"sync"

	"github.com/hupe1980/rowmap/model"
)

// MemoryStore is an in-memory implementation of Store backed by a Go map
// plus a sorted key index. It's suitable for datasets that fit in memory
// and provides O(1) point access and O(log n) range positioning.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[model.Key]*model.Row
	keys []model.Key // sorted ascending
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[model.Key]*model.Row),
	}
}

// Get retrieves the row stored under key.
// The returned row is owned by the store and must not be mutated.
func (m *MemoryStore) Get(_ context.Context, key model.Key) (*model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[key]
	if !ok {
		return nil, ErrNotFound
	}
	return row, nil
}

// Put stores a copy of the row under key.
func (m *MemoryStore) Put(_ context.Context, key model.Key, row *model.Row) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[key]; !ok {
		i := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= key })
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	m.rows[key] = row.Clone()
	return nil
}

// Delete removes the row stored under key.
func (m *MemoryStore) Delete(_ context.Context, key model.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[key]; !ok {
		return ErrNotFound
	}
	delete(m.rows, key)

	i := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= key })
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	return nil
}

// Count returns the number of stored rows.
func (m *MemoryStore) Count(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.rows)), nil
}

// Keys returns a sorted snapshot of all keys.
func (m *MemoryStore) Keys(_ context.Context) ([]model.Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Key, len(m.keys))
	copy(out, m.keys)
	return out, nil
}

// Scan visits all rows with keys in r, in ascending key order.
func (m *MemoryStore) Scan(ctx context.Context, r Range, fn func(key model.Key, row *model.Row) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lo := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= r.Start })
	hi := len(m.keys)
	if r.End != "" {
		hi = sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= r.End })
	}

	for _, key := range m.keys[lo:hi] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(key, m.rows[key]); err != nil {
			return err
		}
	}
	return nil
}
