// Package common defines shared constants and sentinel errors used across
// raidtracker components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Run lifecycle errors.
	ErrRunActive   = errors.New("a run is already active")
	ErrNoActiveRun = errors.New("no active run")

	// Auth/session errors.
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Validation errors.
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrPasswordMismatch = errors.New("current password is incorrect")
)
