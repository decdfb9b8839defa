package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-broker/auth"
	"github.com/jrsteele09/go-auth-broker/gate"
	"github.com/jrsteele09/go-auth-broker/internal/config"
	"github.com/jrsteele09/go-auth-broker/provider"
	"github.com/jrsteele09/go-auth-broker/server/authflowrepo"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the server is wired with
type Dependencies struct {
	TokenService auth.TokenService       // Backend token service (required)
	Providers    *provider.Registry      // Federated providers, may be empty
	AuthState    authflowrepo.Repo       // Pending provider sign-ins, in-memory when nil
	Revoked      token.RevokedClaimCache // Signed-out claim ids, in-memory when nil
}

type Server struct {
	mux    *http.ServeMux
	routes []string
	config config.Config

	credentials  *auth.Credentials
	registration *auth.Registration
	federated    *auth.Federated
	refresher    *auth.Refresher
	builder      *sessions.Builder
	codec        *sessions.Codec
	policy       gate.Policy
	providers    *provider.Registry
	authState    authflowrepo.Repo
	revoked      token.RevokedClaimCache

	loginTmpl *template.Template
	homeTmpl  *template.Template
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if deps.TokenService == nil {
		return nil, fmt.Errorf("[Server New] token service is required")
	}

	signer, err := token.NewHMACSigner(config.GetAuthSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create claim signer: %w", err)
	}

	patterns := config.GetGateBypass()
	if len(patterns) == 0 {
		patterns = gate.DefaultBypassPatterns
	}
	bypass, err := gate.NewBypass(patterns...)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse gate bypass list: %w", err)
	}

	if deps.Providers == nil {
		deps.Providers = provider.NewRegistry()
	}
	if deps.AuthState == nil {
		deps.AuthState = authflowrepo.NewInMemoryRepo(config.GetAuthFlowTimeout())
	}
	if deps.Revoked == nil {
		deps.Revoked = token.NewInMemoryRevokedClaimCache()
	}

	builder := sessions.NewBuilder()
	s := &Server{
		mux:          http.NewServeMux(),
		config:       config,
		credentials:  auth.NewCredentials(deps.TokenService),
		registration: auth.NewRegistration(deps.TokenService),
		federated:    auth.NewFederated(deps.TokenService, builder),
		refresher:    auth.NewRefresher(deps.TokenService, builder),
		builder:      builder,
		codec:        sessions.NewCodec(signer, config.GetSessionMaxAge()),
		policy: gate.Policy{
			Bypass: bypass,
			Gate:   gate.New(config.GetLoginPath(), config.GetHomePath()),
		},
		providers: deps.Providers,
		authState: deps.AuthState,
		revoked:   deps.Revoked,
		loginTmpl: template.Must(template.New("login").Parse(loginPageHTML)),
		homeTmpl:  template.Must(template.New("home").Parse(homePageHTML)),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) isDev() bool {
	return s.config.IsDev()
}

func (s *Server) logRoutes() {
	if !s.isDev() {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func logError(method, path string, err error) {
	log.Error().Err(err).Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
