package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// SaveDocumentCommand replaces one of the user's documents
type SaveDocumentCommand struct {
	Username player.Username
	Kind     storage.Kind
	Data     []byte
}

// SaveDocumentResponse reports what was stored
type SaveDocumentResponse struct {
	Kind  storage.Kind
	Bytes int
}

// SaveDocumentHandler handles the SaveDocument command
type SaveDocumentHandler struct {
	store storage.DocumentStore
}

// NewSaveDocumentHandler creates a new SaveDocumentHandler
func NewSaveDocumentHandler(store storage.DocumentStore) *SaveDocumentHandler {
	return &SaveDocumentHandler{
		store: store,
	}
}

// Handle executes the SaveDocument command.
// Documents are stored verbatim except the catalog, which is normalized to its
// two reference tables first.
func (h *SaveDocumentHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SaveDocumentCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SaveDocumentCommand")
	}

	if !json.Valid(cmd.Data) {
		return nil, &storage.ErrInvalidDocument{Kind: cmd.Kind, Reason: "body is not valid JSON"}
	}

	data := cmd.Data
	if cmd.Kind == storage.KindCatalog {
		master, err := catalog.NormalizeMaster(cmd.Data)
		if err != nil {
			return nil, err
		}
		data, err = json.Marshal(master)
		if err != nil {
			return nil, fmt.Errorf("failed to encode master data: %w", err)
		}
	}

	if err := h.store.Save(ctx, cmd.Username, cmd.Kind, data); err != nil {
		return nil, shared.NewStorageError(cmd.Username.Value(), cmd.Kind.String(), err)
	}

	return &SaveDocumentResponse{Kind: cmd.Kind, Bytes: len(data)}, nil
}
