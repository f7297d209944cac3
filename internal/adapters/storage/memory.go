package storage

import (
	"bytes"
	"context"
	"sync"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// MemoryStore keeps blobs in a map. Contents are lost when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[key]
	if !ok {
		return nil, domain.NewNotFoundError("blob", key)
	}

	return bytes.Clone(v), nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = bytes.Clone(value)

	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)

	return nil
}

// Name implements ports.HealthChecker.
func (m *MemoryStore) Name() string { return "storage.memory" }

// Check implements ports.HealthChecker. A map is always available.
func (m *MemoryStore) Check(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
