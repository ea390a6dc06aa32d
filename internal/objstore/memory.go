package objstore

import (
	"context"
	"sync"
)

// ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps objects in a map. Used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(body))
	copy(copied, body)
	m.objects[key] = copied
	return nil
}

// Get returns the stored object and whether it exists.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	body, ok := m.objects[key]
	return body, ok
}

// Keys returns the stored object keys.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
