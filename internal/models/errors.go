package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by storage, services and the HTTP layer.
var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicateReceiptNumber = errors.New("receipt number already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountInactive        = errors.New("account is deactivated")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrMissingContact         = errors.New("no contact provided")
	ErrInvalidContact         = errors.New("invalid contact")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError for field with a formatted reason.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ProviderError reports a failed call to an external email or SMS provider.
type ProviderError struct {
	Channel string
	Reason  string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s", e.Channel, e.Reason)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
