package provider

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"golang.org/x/oauth2"
)

// OIDCProvider is an OpenID Connect provider found through issuer discovery.
// The ID token is verified before the access token is handed to the backend.
type OIDCProvider struct {
	*OAuth2Provider
	verifier *oidc.IDTokenVerifier
}

var _ Provider = (*OIDCProvider)(nil)

// OIDCSettings configures an OIDC provider
type OIDCSettings struct {
	Name         string
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// NewOIDC discovers the issuer and creates the provider
func NewOIDC(ctx context.Context, settings OIDCSettings) (*OIDCProvider, error) {
	discovered, err := oidc.NewProvider(ctx, settings.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider %s: %w", settings.Name, err)
	}

	scopes := settings.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		OAuth2Provider: NewOAuth2(settings.Name, &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			Endpoint:     discovered.Endpoint(),
			RedirectURL:  settings.RedirectURL,
			Scopes:       scopes,
		}),
		verifier: discovered.Verifier(&oidc.Config{ClientID: settings.ClientID}),
	}, nil
}

func (p *OIDCProvider) Exchange(ctx context.Context, code, verifier string) (token.ProviderToken, error) {
	tok, err := p.exchange(ctx, code, verifier)
	if err != nil {
		return token.ProviderToken{}, err
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return token.ProviderToken{}, fmt.Errorf("[%s] %w", p.name, errors.ErrMissingIDToken)
	}
	if _, err := p.verifier.Verify(ctx, rawIDToken); err != nil {
		return token.ProviderToken{}, fmt.Errorf("[%s] ID token verification failed: %w", p.name, err)
	}

	return token.ProviderToken{Provider: p.name, AccessToken: tok.AccessToken}, nil
}
