package errors

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to callers. Handlers map these to HTTP statuses;
// anything that does not match is treated as an upstream failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("resource already exists")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// Finer-grained sentinels. Each wraps one of the kinds above so callers can
// match on either level with errors.Is.
var (
	// Authentication errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrMissingCaller      = fmt.Errorf("missing authenticated caller: %w", ErrUnauthorized)

	// Token errors. All collapse to ErrUnauthorized so an API client cannot
	// tell a malformed token from an expired or replayed one.
	ErrInvalidToken  = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrTokenExpired  = fmt.Errorf("token expired: %w", ErrUnauthorized)
	ErrTokenMismatch = fmt.Errorf("refresh token mismatch: %w", ErrUnauthorized)

	// User errors
	ErrUserExists   = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrMissingField = fmt.Errorf("required field missing: %w", ErrValidation)

	// Collaborator errors
	ErrMediaUpload = fmt.Errorf("media upload failed: %w", ErrUpstream)
	ErrPersistence = fmt.Errorf("persistence failure: %w", ErrUpstream)
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
