package errors

import (
	"errors"
	"fmt"
)

// Common error types for the scenario client
var (
	// Request errors
	ErrEmptyPath     = errors.New("request path is required")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRequestFailed = errors.New("request failed")

	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing access token")

	// Storage errors
	ErrNotFound  = errors.New("not found")
	ErrEmptyKey  = errors.New("storage key is required")
	ErrCorrupted = errors.New("corrupted session state")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
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
