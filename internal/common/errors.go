// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Movement lifecycle errors.
	ErrAlreadyCompleted   = errors.New("movement already completed")
	ErrInsufficientVolume = errors.New("insufficient feedstock")
	ErrNotSignal          = errors.New("movement is not a signal")
	ErrAlreadyAssigned    = errors.New("signal already assigned to a tank")

	// Reconciliation errors.
	ErrNoCandidates = errors.New("no tank candidates for record")
	ErrNotSelected  = errors.New("record is not selected")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
)

// ValidationError represents a local, synchronous validation failure. It
// never reaches the external store; callers block the corresponding submit
// action instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a named field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
