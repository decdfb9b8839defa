package auth

import (
	"github.com/jrsteele09/go-auth-broker/internal/errors"
)

// DefaultInvalidCredentialsMessage is used when the backend rejects a login without saying why
const DefaultInvalidCredentialsMessage = "Invalid credentials"

// DefaultRegistrationMessage is used when the backend rejects a sign-up without saying why
const DefaultRegistrationMessage = "Registration failed"

// InvalidCredentialsError means the backend rejected the credentials.
// Message comes from the backend and is not guaranteed safe to show to end users.
type InvalidCredentialsError struct {
	Status  int
	Message string
}

func (e *InvalidCredentialsError) Error() string {
	return e.Message
}

func (e *InvalidCredentialsError) Unwrap() error {
	return errors.ErrInvalidCredentials
}

// RegistrationError means the backend refused to create the account.
type RegistrationError struct {
	Status  int
	Message string
}

func (e *RegistrationError) Error() string {
	return e.Message
}

func (e *RegistrationError) Unwrap() error {
	return errors.ErrRegistrationRejected
}
