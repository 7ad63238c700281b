package domain

import (
	"errors"
	"fmt"
)

// ErrValidation marks input rejected locally, before any state change.
var ErrValidation = errors.New("validation failed")

var (
	ErrPasswordMismatch   = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrMissingCredentials = fmt.Errorf("%w: email and password are required", ErrValidation)
	ErrInvalidRole        = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrEmptyField         = fmt.Errorf("%w: field must not be empty", ErrValidation)
)

var (
	// ErrOperationFailed wraps any backend, transport or persistence failure.
	ErrOperationFailed = errors.New("operation failed")

	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrNotAuthenticated     = errors.New("no active session")
	ErrAlreadyAuthenticated = errors.New("a session is already active")
	ErrCorruptSession       = errors.New("stored session is corrupt")
	ErrSessionRejected      = errors.New("session rejected")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrForbidden          = errors.New("access forbidden")
)

// OperationFailed wraps cause so that both errors.Is(err, ErrOperationFailed)
// and errors.Is(err, cause) hold.
func OperationFailed(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrOperationFailed, cause)
}
