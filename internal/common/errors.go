// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrInvalidToken is returned when a bearer token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token's exp claim is not in the future.
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionInvalidated signals that the backend rejected a previously
	// trusted token mid-session. The credential store has already been cleared
	// when this error is observed.
	ErrSessionInvalidated = errors.New("session invalidated")
)
