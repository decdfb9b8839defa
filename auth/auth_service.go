package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
)

// TokenService is the backend that owns user identity and issues token pairs.
// backend.Client is the production implementation.
type TokenService interface {
	Login(ctx context.Context, creds token.Credentials) (*backend.TokenResponse, error)
	FederatedLogin(ctx context.Context, pt token.ProviderToken) (*backend.TokenResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*backend.RefreshResponse, error)
}

var _ TokenService = (*backend.Client)(nil)

// outcomeFromResponse renames the backend's snake_case token fields into the
// broker's pair and checks the pair is complete.
func outcomeFromResponse(kind token.Kind, provider string, resp *backend.TokenResponse) (token.Outcome, error) {
	if resp == nil {
		return token.None(), fmt.Errorf("%w: empty response", errors.ErrMalformedResponse)
	}
	outcome := token.Outcome{
		Kind:     kind,
		Provider: provider,
		Pair: token.Pair{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
		},
		User: resp.User,
	}
	if !outcome.Pair.Complete() {
		return token.None(), fmt.Errorf("%w: token pair incomplete", errors.ErrMalformedResponse)
	}
	return outcome, nil
}
