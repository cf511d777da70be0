package storage

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound indicates the user never saved a document of this kind
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidDocument indicates a POST body that is not JSON
type ErrInvalidDocument struct {
	Kind   Kind
	Reason string
}

func (e *ErrInvalidDocument) Error() string {
	return fmt.Sprintf("invalid %s document: %s", e.Kind, e.Reason)
}
