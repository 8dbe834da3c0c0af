// Package repository persists the pharmacy snapshot as one JSON record per
// collection in a key/value backend (Redis, PostgreSQL or memory).
package repository

import (
	"context"
	"sync"
)

// KV is the minimal key/value contract the state store needs
type KV interface {
	// GetMany returns the values of the keys that exist. Missing keys are
	// absent from the map, not an error.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
	// SetMany writes all values atomically where the backend allows it
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) map[string]string
}

// MemoryKV keeps records in process memory. Used for the default
// development backend and in tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (m *MemoryKV) SetMany(ctx context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryKV) Health(ctx context.Context) map[string]string {
	return map[string]string{"status": "up", "backend": "memory"}
}
