package services

import "errors"

// Shared error taxonomy. Every outcome here is recoverable and surfaced
// to the caller; no operation leaves partial state behind.
var (
	// ErrValidation wraps user-correctable input problems; the wrapped
	// message carries the detail.
	ErrValidation = errors.New("validation failed")

	ErrAlreadyLinked = errors.New("customer already added to this shop")
	ErrPhoneTaken    = errors.New("phone number already in use")
	ErrNotFound      = errors.New("not found")

	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("operation not permitted for this account")

	ErrInvalidCredentials = errors.New("invalid phone or pin")
	ErrPinNotSet          = errors.New("no pin set for this account")
)
