package config

import "time"

type ProviderConfig interface {
	GetGitHub() OAuthClient
	GetOIDC() OIDCClient
	GetAuthFlowTimeout() time.Duration
}

// OAuthClient holds the client registration for a provider
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether the provider has been registered with a client id
func (c OAuthClient) Enabled() bool {
	return c.ClientID != ""
}

// OIDCClient is an OAuthClient against a discoverable OIDC issuer
type OIDCClient struct {
	OAuthClient
	Name   string
	Issuer string
}

func (c OIDCClient) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

var _ ProviderConfig = EnvVars{}

func (e EnvVars) GetGitHub() OAuthClient {
	return OAuthClient{
		ClientID:     e.GitHubClientID,
		ClientSecret: e.GitHubClientSecret,
		RedirectURL:  e.GitHubRedirectURL,
		Scopes:       e.GitHubScopes,
	}
}

func (e EnvVars) GetOIDC() OIDCClient {
	return OIDCClient{
		OAuthClient: OAuthClient{
			ClientID:     e.OIDCClientID,
			ClientSecret: e.OIDCClientSecret,
			RedirectURL:  e.OIDCRedirectURL,
			Scopes:       e.OIDCScopes,
		},
		Name:   e.OIDCName,
		Issuer: e.OIDCIssuer,
	}
}

// GetAuthFlowTimeout is how long a started provider sign-in may take to complete
func (e EnvVars) GetAuthFlowTimeout() time.Duration {
	return e.AuthFlowTimeout
}
