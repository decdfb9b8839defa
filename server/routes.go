package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+s.policy.Gate.LoginPath(), ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteCredentialsCallback, ChainMiddleware(s.CredentialsCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))

	// Federated providers
	s.RegisterRouteHandler("GET "+RouteProviders, ChainMiddleware(s.ProvidersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProviderCallback, ChainMiddleware(s.ProviderCallbackHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteProviderCallback, ChainMiddleware(s.ProviderCallbackHandler(), s.HTMLMiddleware()...)) // For form_post response mode

	// Session
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAuthPreflight, ChainMiddleware(noContentHandler, s.APIMiddleware()...))

	// Protected pages
	s.RegisterRouteHandler(RouteGated, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleware(s.GateMiddleware)...))
}

func noContentHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
