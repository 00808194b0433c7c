package models

import "errors"

// Error kinds surfaced to the user. Handlers map these to HTTP statuses;
// everything else is treated as an internal error.
var (
	// ErrDuplicate is returned when a registration reuses a username or email.
	ErrDuplicate = errors.New("username or email already registered")
	// ErrInvalidCredentials covers both unknown logins and wrong passwords or
	// security answers, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCode is returned when a verification code does not match the
	// one issued to the session, or was already used.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrDeliveryFailure is returned when the mail relay rejects or cannot be
	// reached; the recovery flow halts at its current page.
	ErrDeliveryFailure = errors.New("failed to deliver verification code")
	// ErrMissingFields is returned by client-side style validation before any
	// store call is made.
	ErrMissingFields = errors.New("all fields are required")
	// ErrValidation wraps other pre-store validation failures (password
	// mismatch, unknown security question, bad moderator code).
	ErrValidation = errors.New("invalid registration data")
	// ErrForbidden is returned when a session lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
