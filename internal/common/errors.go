// Package common defines shared constants and sentinel errors used across
// assetvault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Reconciliation errors.
	ErrorValidation    = errors.New("validation error")
	ErrorExternalStore = errors.New("external store error")
	ErrorMetadataWrite = errors.New("metadata write error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
