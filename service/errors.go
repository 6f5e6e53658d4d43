package service

import (
	"errors"
)

var (
	// ErrUnauthorized is returned when an operation needs a signed-in user
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when a user draws numbers too often
	ErrRateLimited = errors.New("too many random draws, please wait a moment")

	// ErrRandomNotConfigured is returned when no Random.org API key is configured
	ErrRandomNotConfigured = errors.New("random number API key is not configured")
)

// ValidationError carries a message that is safe to show to the player
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
