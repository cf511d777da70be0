package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// FileDocumentStore keeps each document in <dir>/<username><suffix>.json.
// Writes go through a temp file and rename so a reader never sees a partial
// document.
type FileDocumentStore struct {
	dir   string
	locks sync.Map // path -> *sync.Mutex
}

// NewFileDocumentStore creates the data directory if needed
func NewFileDocumentStore(dir string) (*FileDocumentStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileDocumentStore{dir: dir}, nil
}

// Path returns the file backing a document
func (s *FileDocumentStore) Path(user player.Username, kind storage.Kind) string {
	return filepath.Join(s.dir, user.Value()+kind.FileSuffix()+".json")
}

func (s *FileDocumentStore) lock(path string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Load reads a document
func (s *FileDocumentStore) Load(ctx context.Context, user player.Username, kind storage.Kind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(user, kind)
	mu := s.lock(path)
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

// Save replaces a document
func (s *FileDocumentStore) Save(ctx context.Context, user player.Username, kind storage.Kind, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(user, kind)
	mu := s.lock(path)
	mu.Lock()
	defer mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
