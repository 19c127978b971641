// Package common defines shared sentinel errors used across the server
// layers. Callers should use errors.Is to match these values; validation
// errors carry field detail via fmt.Errorf("%w: ...", ErrValidation).
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (malformed/missing/forbidden field, constraint
	// violation, uniqueness conflict).
	ErrValidation = errors.New("validation error")

	// Auth errors. Deliberately generic: bad credentials, unknown user,
	// revoked or malformed token all map here.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")
)
