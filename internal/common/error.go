// Package common defines shared constants and sentinel errors used across
// the coursevault server layers. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorPermission   = errors.New("permission denied")
	ErrorCSRF         = errors.New("csrf token mismatch")

	// Validation errors. Every specific kind wraps ErrorValidation.
	ErrorValidation       = errors.New("validation error")
	ErrBadFileType        = fmt.Errorf("%w: bad file type", ErrorValidation)
	ErrBadArchiveContents = fmt.Errorf("%w: bad archive contents", ErrorValidation)
	ErrorTooLong          = fmt.Errorf("%w: too long", ErrorValidation)

	// Upload errors.
	ErrorOversizeUpload = errors.New("upload exceeds maximum size")

	// Storage errors.
	ErrorUnmanagedPath = errors.New("path is not managed by storage")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrorValidation }

// StorageInconsistencyError means a material row and its backing file went
// out of sync (row deleted but file left behind, or the reverse). It breaks
// the one-row-one-file invariant and must be reported, not retried.
type StorageInconsistencyError struct {
	MaterialID int64
	Path       string
	Err        error
}

func (e *StorageInconsistencyError) Error() string {
	return fmt.Sprintf("storage inconsistency for material %d (%s): %v", e.MaterialID, e.Path, e.Err)
}

func (e *StorageInconsistencyError) Unwrap() error { return e.Err }
