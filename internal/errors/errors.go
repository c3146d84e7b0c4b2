package errors

import (
	"errors"
	"fmt"
)

// Common error types for the clinic console
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLoginInProgress  = errors.New("login already in progress")
	ErrInvalidRole      = errors.New("invalid role")

	// Storage errors
	ErrNotFound = errors.New("not found")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

const (
	// MessageLoginFailed is shown when the authentication service gives no reason.
	MessageLoginFailed = "Login failed. Please check your credentials and try again."
	// MessageNetwork is shown when the clinic service cannot be reached.
	MessageNetwork = "Unable to reach the clinic service. Please try again."
	// MessageSessionExpired is shown when a stored credential is no longer accepted.
	MessageSessionExpired = "Your session has expired. Please log in again."
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

// New is errors.New, re-exported so callers need a single errors import.
func New(text string) error {
	return errors.New(text)
}
