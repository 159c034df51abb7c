package internal

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when an operation names a session id that is not stored
var ErrSessionNotFound = errors.New("session not found")

// StorageError represents errors reading or writing the key/value store
type StorageError struct {
	Op  string // "open", "get", "set", "delete"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding stored or imported data
type ParseError struct {
	Source string // "storage", "import"
	Key    string // storage key or file name
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports the first field that failed validation.
// Index is the record position for collection payloads, or -1.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("validation error: record %d: %s: %s", e.Index, e.Field, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("validation error: record %d: %s", e.Index, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
}

// NewValidationError creates a ValidationError that is not tied to a record
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: reason}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
