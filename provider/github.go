package provider

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubName is the provider id the backend serves under /api/auth/github/
const GitHubName = "github"

var defaultGitHubScopes = []string{"read:user", "user:email"}

// NewGitHub creates the GitHub OAuth2 provider
func NewGitHub(clientID, clientSecret, redirectURL string, scopes []string) *OAuth2Provider {
	if len(scopes) == 0 {
		scopes = defaultGitHubScopes
	}
	return NewOAuth2(GitHubName, &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     github.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	})
}
