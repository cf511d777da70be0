package helpers

import (
	"context"
	"sync"

	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// MockDocumentStore is an in-memory test double for storage.DocumentStore
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string][]byte // username/kind -> document

	// SaveErr, when set, is returned by every Save
	SaveErr error
	// LoadErr, when set, is returned by every Load
	LoadErr error
}

// NewMockDocumentStore creates a new mock document store
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string][]byte),
	}
}

func documentKey(user player.Username, kind storage.Kind) string {
	return user.Value() + "/" + string(kind)
}

// Put stores a document directly, bypassing SaveErr
func (m *MockDocumentStore) Put(user player.Username, kind storage.Kind, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[documentKey(user, kind)] = append([]byte(nil), data...)
}

// Get returns a stored document for assertions
func (m *MockDocumentStore) Get(user player.Username, kind storage.Kind) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.documents[documentKey(user, kind)]
	return data, ok
}

// Load returns the stored document
func (m *MockDocumentStore) Load(ctx context.Context, user player.Username, kind storage.Kind) ([]byte, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	data, ok := m.Get(user, kind)
	if !ok {
		return nil, storage.ErrDocumentNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the stored document
func (m *MockDocumentStore) Save(ctx context.Context, user player.Username, kind storage.Kind, data []byte) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Put(user, kind, data)
	return nil
}
