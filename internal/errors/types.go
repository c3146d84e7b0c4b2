package errors

import (
	"fmt"
	"net/http"
)

// ValidationError is a local failure detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation returns a *ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthKind classifies a remote failure.
type AuthKind int

const (
	KindInvalidCredentials AuthKind = iota + 1
	KindExpired
	KindForbidden
	KindNetwork
)

func (k AuthKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindExpired:
		return "expired"
	case KindForbidden:
		return "forbidden"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// AuthError is a failure reported by (or while reaching) the clinic API.
// Message is human readable and safe to display.
type AuthError struct {
	Kind    AuthKind
	Message string
	Status  int
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Network wraps a transport failure.
func Network(err error) *AuthError {
	return &AuthError{Kind: KindNetwork, Message: MessageNetwork, Err: err}
}

// DisplayMessage returns the text to surface to a user for err, falling back
// to fallback when err carries nothing displayable.
func DisplayMessage(err error, fallback string) string {
	var authErr *AuthError
	if As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	var validationErr *ValidationError
	if As(err, &validationErr) && validationErr.Message != "" {
		return validationErr.Message
	}
	return fallback
}

// HTTPStatus maps err onto the status the console answers with.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	if As(err, &validationErr) {
		return http.StatusBadRequest
	}
	var authErr *AuthError
	if As(err, &authErr) {
		switch authErr.Kind {
		case KindInvalidCredentials, KindExpired:
			return http.StatusUnauthorized
		case KindForbidden:
			return http.StatusForbidden
		case KindNetwork:
			return http.StatusBadGateway
		}
		if authErr.Status != 0 {
			return authErr.Status
		}
	}
	switch {
	case Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case Is(err, ErrLoginInProgress):
		return http.StatusConflict
	case Is(err, ErrNotFound):
		return http.StatusNotFound
	case Is(err, ErrInvalidRequest), Is(err, ErrInvalidRole):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
