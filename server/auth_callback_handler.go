package server

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/server/authflowrepo"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// providerLink is a provider as listed on the login page and by the providers endpoint
type providerLink struct {
	ID        string `json:"id"`
	SignInURL string `json:"signinUrl"`
}

func (s *Server) providerLinks(callbackURL string) []providerLink {
	names := s.providers.Names()
	links := make([]providerLink, 0, len(names))
	for _, name := range names {
		signIn := strings.Replace(RouteSignIn, "{provider}", url.PathEscape(name), 1)
		if callbackURL != "" {
			signIn += "?" + url.Values{ParamCallbackURL: {callbackURL}}.Encode()
		}
		links = append(links, providerLink{ID: name, SignInURL: signIn})
	}
	return links
}

// ProvidersHandler lists the configured federated providers
func (s *Server) ProvidersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.providerLinks(""))
	}
}

// SignInHandler starts a provider sign-in: it records state and PKCE verifier
// and sends the browser to the provider.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.providers.Get(r.PathValue("provider"))
		if err != nil {
			http.Error(w, "Unknown provider", http.StatusNotFound)
			return
		}

		state, err := generateRandomString(32)
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			http.Error(w, "Failed to start sign in", http.StatusInternalServerError)
			return
		}
		verifier := oauth2.GenerateVerifier()

		err = s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			Provider:     p.Name(),
			CodeVerifier: verifier,
			ReturnURL:    s.safeCallbackURL(r.URL.Query().Get(ParamCallbackURL)),
		})
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			http.Error(w, "Failed to start sign in", http.StatusInternalServerError)
			return
		}

		s.setAuthStateCookie(w, r, state)
		http.Redirect(w, r, p.AuthCodeURL(state, verifier), http.StatusFound)
	}
}

// ProviderCallbackHandler completes a provider sign-in and exchanges the
// provider token with the backend. If that exchange fails the prior session,
// if any, is kept.
func (s *Server) ProviderCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("provider")
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")

		if errorParam := r.FormValue("error"); errorParam != "" {
			log.Warn().Str("provider", name).Str("error", errorParam).Str("description", r.FormValue("error_description")).Msg("provider denied authorization")
			s.discardFlow(state)
			s.clearAuthStateCookie(w, r)
			http.Redirect(w, r, s.loginURL("", ErrorCodeOAuth), http.StatusSeeOther)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(authStateCookieName)
		if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
			http.Error(w, errors.ErrInvalidState.Error(), http.StatusBadRequest)
			return
		}
		s.clearAuthStateCookie(w, r)

		flow, err := s.authState.Take(state)
		if err != nil || flow.Provider != name {
			http.Error(w, errors.ErrInvalidState.Error(), http.StatusBadRequest)
			return
		}

		p, err := s.providers.Get(name)
		if err != nil {
			http.Error(w, "Unknown provider", http.StatusNotFound)
			return
		}

		pt, err := p.Exchange(r.Context(), code, flow.CodeVerifier)
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			http.Redirect(w, r, s.loginURL(flow.ReturnURL, ErrorCodeOAuth), http.StatusSeeOther)
			return
		}

		prior, _ := ClaimFromContext(r.Context())
		claim, exchanged := s.federated.ExchangeOrKeep(r.Context(), prior, pt)
		if !claim.Valid() {
			http.Redirect(w, r, s.loginURL(flow.ReturnURL, ErrorCodeFederation), http.StatusSeeOther)
			return
		}
		if exchanged {
			if err := s.writeClaim(w, r, claim); err != nil {
				logError(r.Method, r.URL.Path, err)
				http.Redirect(w, r, s.loginURL(flow.ReturnURL, ErrorCodeUnavailable), http.StatusSeeOther)
				return
			}
		}
		http.Redirect(w, r, flow.ReturnURL, http.StatusSeeOther)
	}
}

func (s *Server) discardFlow(state string) {
	if state == "" {
		return
	}
	if err := s.authState.Delete(state); err != nil {
		log.Warn().Err(err).Msg("failed to discard auth flow state")
	}
}
