package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a local pre-write check failed.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the database rejected a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the actor lacks the required capability.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or anonymous session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBlocked indicates the account is blocked; the session must be destroyed.
	ErrBlocked = errors.New("account blocked")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
