package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Federated exchanges an identity provider's access token for a backend token pair.
// The provider's own token never reaches the session; only the backend pair does.
type Federated struct {
	service TokenService
	builder *sessions.Builder
	logger  zerolog.Logger
}

// FederatedOption defines a function type to modify the Federated instance.
type FederatedOption func(*Federated)

// WithLogger sets the logger degraded exchanges are reported to
func WithLogger(logger zerolog.Logger) FederatedOption {
	return func(f *Federated) {
		f.logger = logger
	}
}

// NewFederated creates a federated exchange backed by service
func NewFederated(service TokenService, builder *sessions.Builder, options ...FederatedOption) *Federated {
	f := &Federated{
		service: service,
		builder: builder,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Exchange trades pt for a backend token pair. Every failure wraps
// errors.ErrFederationDegraded.
func (f *Federated) Exchange(ctx context.Context, pt token.ProviderToken) (token.Outcome, error) {
	if pt.AccessToken == "" {
		return token.None(), fmt.Errorf("%w: provider %q returned no access token", errors.ErrFederationDegraded, pt.Provider)
	}

	resp, err := f.service.FederatedLogin(ctx, pt)
	if err != nil {
		return token.None(), fmt.Errorf("%w: %w", errors.ErrFederationDegraded, err)
	}

	outcome, err := outcomeFromResponse(token.KindFederated, pt.Provider, resp)
	if err != nil {
		return token.None(), fmt.Errorf("%w: %w", errors.ErrFederationDegraded, err)
	}
	return outcome, nil
}

// ExchangeOrKeep runs Exchange and merges the result into prior.
// A failed exchange does not fail the login: prior is returned untouched
// (nil if there was none), the failure is logged and exchanged is false.
func (f *Federated) ExchangeOrKeep(ctx context.Context, prior *sessions.Claim, pt token.ProviderToken) (claim *sessions.Claim, exchanged bool) {
	outcome, err := f.Exchange(ctx, pt)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("provider", pt.Provider).
			Bool("prior_claim", prior.Valid()).
			Msg("federated exchange degraded, keeping prior claim")
		return prior, false
	}
	return f.builder.FromOutcome(prior, outcome), true
}
