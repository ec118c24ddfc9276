package session

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed    = errors.New("authentication failed")
	ErrRegistrationFailed      = errors.New("registration failed")
	ErrTokenMalformedOrExpired = errors.New("token malformed or expired")
	ErrAccountRequestFailed    = errors.New("account request failed")
	ErrNotAuthenticated        = errors.New("not authenticated")
)

// Error is a failed session operation. Kind is one of the package
// sentinels and Message is safe to show to the user.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
