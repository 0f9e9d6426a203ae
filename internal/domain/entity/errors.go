package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidFeedSource indicates that a configured feed source is malformed.
	ErrInvalidFeedSource = errors.New("invalid feed source")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrValidationFailed) to match any ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
