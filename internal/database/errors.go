package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Sentinels for errors.Is. Each typed error below matches exactly one of them.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorage            = errors.New("storage error")
	ErrNotFound           = errors.New("not found")
)

// StorageUnavailableError means the engine could not be initialised.
type StorageUnavailableError struct {
	DSN string
	Err error
}

// Error implements the error interface
func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable (%s): %v", e.DSN, e.Err)
}

// Unwrap returns the underlying error
func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorageUnavailable.
func (e *StorageUnavailableError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// StorageError represents a failed engine operation with its context.
type StorageError struct {
	Operation string
	Table     string
	Err       error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("database error in %s on %s: %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("database error in %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// WrapStorageError annotates an engine error with the operation and table.
// Errors that are already typed by this package, or validation errors, pass
// through unchanged.
func WrapStorageError(operation string, table Table, err error) error {
	if err == nil {
		return nil
	}
	var (
		se *StorageError
		ue *StorageUnavailableError
		ne *NotFoundError
	)
	if errors.As(err, &se) || errors.As(err, &ue) || errors.As(err, &ne) || isValidation(err) {
		return err
	}
	return &StorageError{
		Operation: operation,
		Table:     string(table),
		Err:       err,
	}
}

// NewNotFoundErrorWithID creates a new NotFoundError with an ID
func NewNotFoundErrorWithID(resource string, id interface{}) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// IsDuplicate reports whether err comes from inserting a row whose primary
// key or unique index value is already taken.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
