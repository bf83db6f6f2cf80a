package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail is returned when an account already uses the email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers every way a bearer token can fail verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrValidation wraps input problems; the wrapped message is safe to show.
	ErrValidation = errors.New("invalid input")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
