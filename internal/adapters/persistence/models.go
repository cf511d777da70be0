package persistence

import (
	"time"
)

// DocumentModel represents the documents table. One row per user and kind;
// the body is stored verbatim.
type DocumentModel struct {
	Username  string    `gorm:"column:username;primaryKey;size:64"`
	Kind      string    `gorm:"column:kind;primaryKey;size:32"`
	Body      []byte    `gorm:"column:body;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (DocumentModel) TableName() string {
	return "documents"
}
