// Package apperrors defines the error taxonomy shared by services and
// handlers. Sentinels are matched with errors.Is; ValidationError carries
// a caller-facing message and is matched with errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced lead, deal, or property
	// does not exist. On load-before-update/delete paths it surfaces as
	// a clean structured failure, not a panic.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthenticated is returned when no identity is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the caller's role lacks staff
	// privileges for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrPersistence wraps store read/write failures. A persistence
	// failure during a primary mutation aborts with no partial write.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports malformed input, rejected before any store
// access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Persistencef wraps a store error so it matches ErrPersistence while
// preserving the underlying cause for logs.
func Persistencef(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
