package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a payload that violates an entity invariant.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewValidationErrorWithValue creates a new ValidationError with a value
func NewValidationErrorWithValue(field, reason string, value interface{}) error {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

// Ptr returns a pointer to v. Handy for optional fields and patches.
func Ptr[T any](v T) *T {
	return &v
}

func requireString(field, v string) error {
	if v == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

func requireTime(field string, v time.Time) error {
	if v.IsZero() {
		return NewValidationError(field, "is required")
	}
	return nil
}

func requirePositive(field string, v float64) error {
	if v <= 0 {
		return NewValidationErrorWithValue(field, "must be positive", v)
	}
	return nil
}

func requireAfter(field string, v, start time.Time) error {
	if !v.After(start) {
		return NewValidationErrorWithValue(field, "must be after "+start.UTC().Format(time.RFC3339Nano), v.UTC().Format(time.RFC3339Nano))
	}
	return nil
}

// utc normalises stored timestamps so that text comparison in the engine
// matches chronological order.
func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
