package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is deliberately generic so a caller cannot tell
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("Invalid username or password")

	// ErrMissingRefreshToken reports a refresh attempt without a token.
	ErrMissingRefreshToken = errors.New("refresh token missing")

	// ErrInvalidRefreshToken reports a refresh token that fails signature or
	// ownership checks.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrReuseDetected reports redemption of a token the store no longer
	// holds: evidence of theft, answered with mass invalidation.
	ErrReuseDetected = errors.New("Invalid refresh token: Token reuse detected")

	// ErrInvalidOTP covers both wrong and expired codes; cache TTL is the
	// expiry mechanism so the two are indistinguishable by design.
	ErrInvalidOTP = errors.New("Invalid OTP")

	// ErrEmailAlreadyVerified reports a verification request for an
	// already-verified account.
	ErrEmailAlreadyVerified = errors.New("email is already verified")

	// ErrUnauthorized is the generic authentication failure.
	ErrUnauthorized = errors.New("unauthorized")
)

// ConflictError reports a uniqueness violation at registration, naming the
// conflicting field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already taken", e.Field)
}

// ValidationError reports malformed input at the service boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AccountLockedError reports a login attempt against a locked account.
type AccountLockedError struct {
	MinutesRemaining int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf(
		"Too many failed login attempts. Account is locked, try again in %d minute(s)",
		e.MinutesRemaining,
	)
}

// AttemptsWarningError reports a wrong password along with how many attempts
// remain before the account locks.
type AttemptsWarningError struct {
	Remaining int
}

func (e *AttemptsWarningError) Error() string {
	return fmt.Sprintf("Invalid username or password. %d attempt(s) remaining", e.Remaining)
}
