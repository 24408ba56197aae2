package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory. Used for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]Record)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.slots[key]
	if !ok {
		return Record{}, ErrSlotNotFound
	}
	return Record{Value: append([]byte(nil), rec.Value...), Version: rec.Version}, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte, expectedVersion int64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slots[key].Version != expectedVersion {
		return Record{}, ErrVersionConflict
	}
	rec := Record{Value: append([]byte(nil), value...), Version: expectedVersion + 1}
	m.slots[key] = rec
	return Record{Value: append([]byte(nil), value...), Version: rec.Version}, nil
}

// Seed stores value under key without a version check, the way fixtures and
// external writers (the login flow for loggedInUser) populate slots.
func (m *MemoryStore) Seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = Record{Value: append([]byte(nil), value...), Version: m.slots[key].Version + 1}
}
