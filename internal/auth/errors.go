package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated means the bearer token is missing, invalid, expired,
	// or names an identity the directory no longer knows.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the principal is authenticated but lacks a required role.
	ErrForbidden = errors.New("forbidden")
	// ErrDirectoryUnavailable wraps a failed user lookup that was not a miss.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt signing secret is required")
)
