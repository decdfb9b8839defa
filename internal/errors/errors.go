package errors

import (
	"errors"
	"fmt"
)

// Common error types for the token broker
var (
	// Exchange errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRegistrationRejected = errors.New("registration rejected")
	ErrUpstreamUnavailable  = errors.New("backend token service unavailable")
	ErrFederationDegraded   = errors.New("federated exchange failed")
	ErrMalformedResponse    = errors.New("malformed backend response")
	ErrBackendURLMissing    = errors.New("backend url is not configured")

	// Claim errors
	ErrInvalidClaim   = errors.New("invalid session claim")
	ErrClaimExpired   = errors.New("session claim expired")
	ErrSecretRequired = errors.New("session secret is required")
	ErrSecretTooShort = errors.New("session secret too short")

	// Provider errors
	ErrUnknownProvider = errors.New("unknown provider")
	ErrInvalidState    = errors.New("invalid state parameter")
	ErrMissingIDToken  = errors.New("no id_token in provider response")

	// Gate errors
	ErrInvalidPattern = errors.New("invalid bypass pattern")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
