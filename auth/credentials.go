package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
)

// Credentials exchanges a username and password for a backend token pair.
type Credentials struct {
	service TokenService
}

// NewCredentials creates a credential exchange backed by service
func NewCredentials(service TokenService) *Credentials {
	return &Credentials{service: service}
}

// Exchange trades creds for a token pair and profile.
//
// Incomplete credentials are not an error: the result is a KindNone outcome and
// the backend is never called. A backend rejection returns an
// *InvalidCredentialsError. Transport failures wrap errors.ErrUpstreamUnavailable.
func (c *Credentials) Exchange(ctx context.Context, creds token.Credentials) (token.Outcome, error) {
	if creds.Missing() {
		return token.None(), nil
	}

	resp, err := c.service.Login(ctx, creds)
	if err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) {
			msg := se.Message
			if msg == "" {
				msg = DefaultInvalidCredentialsMessage
			}
			return token.None(), &InvalidCredentialsError{Status: se.Status, Message: msg}
		}
		return token.None(), errors.Wrapf(err, "credential exchange")
	}

	return outcomeFromResponse(token.KindCredential, "", resp)
}
