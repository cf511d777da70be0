package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// GormDocumentRepository implements storage.DocumentStore using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GORM document repository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Load retrieves a document by user and kind
func (r *GormDocumentRepository) Load(ctx context.Context, user player.Username, kind storage.Kind) ([]byte, error) {
	var model DocumentModel
	result := r.db.WithContext(ctx).
		Where("username = ? AND kind = ?", user.Value(), string(kind)).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", result.Error)
	}
	return model.Body, nil
}

// Save replaces the document for user and kind
func (r *GormDocumentRepository) Save(ctx context.Context, user player.Username, kind storage.Kind, data []byte) error {
	model := DocumentModel{
		Username:  user.Value(),
		Kind:      string(kind),
		Body:      append([]byte(nil), data...),
		UpdatedAt: time.Now().UTC(),
	}

	// Upsert: create or replace body
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save document: %w", result.Error)
	}
	return nil
}
