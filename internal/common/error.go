// Package common defines shared constants and sentinel errors used across
// the MedTrack server layers. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateField = errors.New("duplicate field")

	// Service-level errors.
	ErrorInternal            = errors.New("internal error")
	ErrorValidation          = errors.New("validation error")
	ErrorInvalidCredentials  = errors.New("invalid credentials")
	ErrorUnauthenticated     = errors.New("unauthenticated")
	ErrorForbidden           = errors.New("forbidden")
	ErrorAlreadyDispensed    = errors.New("prescription already dispensed")
	ErrorAttachmentsDisabled = errors.New("attachments are not configured")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// DuplicateFieldError reports a uniqueness violation on a single user field
// (email, phone, aadhaar or medTrackId). It matches ErrorDuplicateField.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrorDuplicateField
}

// ValidationError carries a client-facing reason. It matches ErrorValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}

// NewValidationError returns a *ValidationError with the given reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}
