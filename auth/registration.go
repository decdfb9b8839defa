package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
)

// Registration creates a backend account and signs the new user in.
type Registration struct {
	service TokenService
}

// NewRegistration creates a registration exchange backed by service
func NewRegistration(service TokenService) *Registration {
	return &Registration{service: service}
}

// Register behaves like Credentials.Exchange: a request without username or
// password is a KindNone outcome, a backend rejection is a *RegistrationError.
func (r *Registration) Register(ctx context.Context, req backend.RegisterRequest) (token.Outcome, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return token.None(), nil
	}

	resp, err := r.service.Register(ctx, req)
	if err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) {
			msg := se.Message
			if msg == "" {
				msg = DefaultRegistrationMessage
			}
			return token.None(), &RegistrationError{Status: se.Status, Message: msg}
		}
		return token.None(), errors.Wrapf(err, "registration")
	}

	return outcomeFromResponse(token.KindRegistration, "", resp)
}
