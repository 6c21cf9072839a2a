// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDateRange is returned when a date range has its end
	// before its start.
	ErrInvalidDateRange = errors.New("end date cannot be before start date")

	// ErrStateNotInTemplate is returned when a task references a workflow
	// state that does not belong to its board's template.
	ErrStateNotInTemplate = errors.New("state does not belong to the board's workflow template")

	// ErrUnknownRole is returned when a role name is not part of the
	// role catalog.
	ErrUnknownRole = errors.New("unknown role")
)

// ValidationError carries the field that failed validation alongside the
// underlying sentinel, so callers can report which input was rejected.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
