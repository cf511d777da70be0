package storage

import (
	"context"

	"github.com/kantai-tool/fleetdeck/internal/domain/player"
)

// DocumentStore persists whole per-user JSON documents.
//
// Documents are opaque to the store: it neither parses nor merges them, and a
// write replaces the previous document (last writer wins). Implementations must
// be safe for concurrent use.
type DocumentStore interface {
	// Load returns the stored document, or ErrDocumentNotFound
	Load(ctx context.Context, user player.Username, kind Kind) ([]byte, error)

	// Save replaces the stored document
	Save(ctx context.Context, user player.Username, kind Kind, data []byte) error
}
