package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"golang.org/x/oauth2"
)

// Provider completes the sign-in handshake with an external identity provider
// and hands back the provider's access token. The handshake itself is done by
// golang.org/x/oauth2; the broker only drives it.
type Provider interface {
	// Name is the provider id used in routes and in the backend federated endpoint
	Name() string
	// AuthCodeURL is where the user is sent to sign in; verifier is the PKCE code verifier
	AuthCodeURL(state, verifier string) string
	// Exchange trades an authorization code for the provider's access token
	Exchange(ctx context.Context, code, verifier string) (token.ProviderToken, error)
}

// OAuth2Provider is a plain OAuth2 provider such as GitHub
type OAuth2Provider struct {
	name   string
	config *oauth2.Config
}

var _ Provider = (*OAuth2Provider)(nil)

// NewOAuth2 creates an OAuth2 provider from a ready oauth2.Config
func NewOAuth2(name string, config *oauth2.Config) *OAuth2Provider {
	return &OAuth2Provider{name: name, config: config}
}

func (p *OAuth2Provider) Name() string {
	return p.name
}

func (p *OAuth2Provider) AuthCodeURL(state, verifier string) string {
	return p.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (p *OAuth2Provider) Exchange(ctx context.Context, code, verifier string) (token.ProviderToken, error) {
	tok, err := p.exchange(ctx, code, verifier)
	if err != nil {
		return token.ProviderToken{}, err
	}
	return token.ProviderToken{Provider: p.name, AccessToken: tok.AccessToken}, nil
}

func (p *OAuth2Provider) exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("[%s] missing authorization code", p.name)
	}
	tok, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("[%s] code exchange failed: %w", p.name, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("[%s] code exchange returned no access token", p.name)
	}
	return tok, nil
}

// Registry holds the configured providers by name
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry holding providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider called name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
