package auth

import (
	"errors"
	"fmt"
)

// GenericAuthFailure is the exact message returned for every failed login
// attempt. Unknown email and wrong password produce byte-identical responses
// so that the login endpoint cannot be used to enumerate accounts.
const GenericAuthFailure = "Invalid credentials"

var (
	// ErrInvalidCredentials is returned when authentication fails for any
	// reason the caller is not allowed to distinguish.
	ErrInvalidCredentials = errors.New(GenericAuthFailure)

	// ErrSessionAbsent is returned by a SessionStore when no session exists
	// for the given token.
	ErrSessionAbsent = errors.New("session absent")

	// ErrSessionExpired is returned when a previously valid session no longer
	// verifies (expired, revoked, or malformed token).
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidToken is returned when a token fails signature or claim
	// verification.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports client-side input problems detected before any
// store or network access. It is never forwarded to the credential store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError reports a capability the caller does not hold. The
// message is uniform regardless of which capability was required.
type AuthorizationError struct {
	Capability string
}

func (e *AuthorizationError) Error() string {
	return "access denied"
}
