package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

// ValidationError reports user input that was rejected before any state change
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Formation errors

type FormationError struct {
	*DomainError
}

func NewFormationError(message string) *FormationError {
	return &FormationError{DomainError: &DomainError{Message: message}}
}

// InvalidCoordinateError is returned when a slot coordinate does not exist in the
// target formation. It indicates an inconsistent drag payload, not a user mistake.
type InvalidCoordinateError struct {
	*FormationError
	Deck    int
	Section int
	Slot    int
}

func NewInvalidCoordinateError(deck, section, slot int, reason string) *InvalidCoordinateError {
	return &InvalidCoordinateError{
		FormationError: NewFormationError(
			fmt.Sprintf("invalid slot coordinate deck=%d section=%d slot=%d: %s", deck, section, slot, reason),
		),
		Deck:    deck,
		Section: section,
		Slot:    slot,
	}
}

// ConflictError is returned when an operation is blocked by a collection invariant
// (last deck, last set, duplicate name). Cause is the package sentinel so callers
// can match it with errors.Is.
type ConflictError struct {
	*DomainError
	Subject string
	Cause   error
}

func NewConflictError(subject string, cause error) *ConflictError {
	return &ConflictError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %v", subject, cause)},
		Subject:     subject,
		Cause:       cause,
	}
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// Storage errors

type StorageError struct {
	*DomainError
	Username string
	Kind     string
	Cause    error
}

func NewStorageError(username, kind string, err error) *StorageError {
	return &StorageError{
		DomainError: &DomainError{Message: fmt.Sprintf("storage failure for %s/%s: %v", username, kind, err)},
		Username:    username,
		Kind:        kind,
		Cause:       err,
	}
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
