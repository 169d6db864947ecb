package errors

import (
	"errors"
	"fmt"
)

// Common error types for the KlarBill gateway
var (
	// Identification errors
	ErrInvalidIdentifier = errors.New("identifier not recognised")
	ErrEmptyIdentifier   = errors.New("identifier is empty")
	ErrUnknownCandidate  = errors.New("invoice is not a pending candidate")
	ErrNoDisambiguation  = errors.New("no invoice selection pending")

	// Verification errors
	ErrVerificationMismatch    = errors.New("date of birth does not match")
	ErrVerificationNotRequired = errors.New("verification not required")

	// Chat errors
	ErrSessionNotUsable = errors.New("session is not identified")
	ErrEmptyMessage     = errors.New("message is empty")

	// Backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendResponse    = errors.New("malformed backend response")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidCookie   = errors.New("invalid session cookie")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
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
