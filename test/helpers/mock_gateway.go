package helpers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// MockGateway is an in-memory test double for session.Gateway. Missing
// documents read as the kind's empty default, like the server.
type MockGateway struct {
	mu        sync.Mutex
	documents map[storage.Kind][]byte
	loadErrs  map[storage.Kind]error
	saveErrs  map[storage.Kind]error
	saves     []storage.Kind
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		documents: make(map[storage.Kind][]byte),
		loadErrs:  make(map[storage.Kind]error),
		saveErrs:  make(map[storage.Kind]error),
	}
}

// Put seeds a document
func (g *MockGateway) Put(kind storage.Kind, data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.documents[kind] = append([]byte(nil), data...)
}

// Document returns what was last stored for a kind
func (g *MockGateway) Document(kind storage.Kind) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.documents[kind]
	return data, ok
}

// FailLoad makes every Load of kind return err
func (g *MockGateway) FailLoad(kind storage.Kind, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loadErrs[kind] = err
}

// FailSave makes every Save of kind return err
func (g *MockGateway) FailSave(kind storage.Kind, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saveErrs[kind] = err
}

// Saves lists the kinds saved so far, in order
func (g *MockGateway) Saves() []storage.Kind {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]storage.Kind(nil), g.saves...)
}

// Load returns the stored document
func (g *MockGateway) Load(ctx context.Context, kind storage.Kind) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadErrs[kind]; err != nil {
		return nil, err
	}
	data, ok := g.documents[kind]
	if !ok {
		return kind.EmptyDocument(), nil
	}
	return append([]byte(nil), data...), nil
}

// Save stores a document. Catalog uploads are normalized the way the server does.
func (g *MockGateway) Save(ctx context.Context, kind storage.Kind, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.saveErrs[kind]; err != nil {
		return err
	}
	if kind == storage.KindCatalog {
		master, err := catalog.NormalizeMaster(data)
		if err != nil {
			return err
		}
		if data, err = json.Marshal(master); err != nil {
			return err
		}
	}
	g.documents[kind] = append([]byte(nil), data...)
	g.saves = append(g.saves, kind)
	return nil
}
