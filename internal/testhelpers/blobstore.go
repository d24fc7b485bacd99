package testhelpers

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is an in-memory media.BlobStore.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// FailSave makes every Save return an error.
	FailSave bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave {
		return errors.New("blob store unavailable")
	}
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryStore) URL(key string) string {
	return "/media/" + key
}

// Has reports whether key is stored.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
