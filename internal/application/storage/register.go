package storage

import (
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/commands"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/queries"
	domainStorage "github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// RegisterHandlers wires the document commands and queries into the mediator
func RegisterHandlers(m mediator.Mediator, store domainStorage.DocumentStore) error {
	if err := mediator.RegisterHandler[*commands.LoginCommand](m, commands.NewLoginHandler()); err != nil {
		return fmt.Errorf("failed to register login handler: %w", err)
	}
	if err := mediator.RegisterHandler[*commands.SaveDocumentCommand](m, commands.NewSaveDocumentHandler(store)); err != nil {
		return fmt.Errorf("failed to register save document handler: %w", err)
	}
	if err := mediator.RegisterHandler[*queries.LoadDocumentQuery](m, queries.NewLoadDocumentHandler(store)); err != nil {
		return fmt.Errorf("failed to register load document handler: %w", err)
	}
	return nil
}
