package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrValidation matches every ValidationError through errors.Is
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is wrapped by repositories when an entity does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationError reports bad input to a domain operation.
// It is always surfaced to the caller and never corrected silently.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ListenerError wraps a failure raised inside a notification listener.
// Listener errors are isolated per listener and never propagated by Alert.Evaluate.
type ListenerError struct {
	ListenerID string
	AlertID    uuid.UUID
	Cause      error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %q failed for alert %s: %v", e.ListenerID, e.AlertID, e.Cause)
}

func (e *ListenerError) Unwrap() error {
	return e.Cause
}
