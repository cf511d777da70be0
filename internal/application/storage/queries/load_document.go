package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// LoadDocumentQuery reads one of the user's documents
type LoadDocumentQuery struct {
	Username player.Username
	Kind     storage.Kind
}

// LoadDocumentResponse carries the raw document
type LoadDocumentResponse struct {
	Data []byte
	// Found is false when the empty default was returned
	Found bool
}

// LoadDocumentHandler handles the LoadDocument query
type LoadDocumentHandler struct {
	store storage.DocumentStore
}

// NewLoadDocumentHandler creates a new LoadDocumentHandler
func NewLoadDocumentHandler(store storage.DocumentStore) *LoadDocumentHandler {
	return &LoadDocumentHandler{
		store: store,
	}
}

// Handle executes the LoadDocument query.
// A missing document reads as the kind's empty default; so does a corrupt
// catalog or bucket document, which clients could not use anyway.
func (h *LoadDocumentHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*LoadDocumentQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoadDocumentQuery")
	}

	data, err := h.store.Load(ctx, query.Username, query.Kind)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return &LoadDocumentResponse{Data: query.Kind.EmptyDocument()}, nil
	}
	if err != nil {
		return nil, shared.NewStorageError(query.Username.Value(), query.Kind.String(), err)
	}

	switch query.Kind {
	case storage.KindCatalog, storage.KindBuckets:
		if !json.Valid(data) {
			return &LoadDocumentResponse{Data: query.Kind.EmptyDocument()}, nil
		}
	}

	return &LoadDocumentResponse{Data: data, Found: true}, nil
}
