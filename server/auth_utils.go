package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/rs/zerolog/log"
)

const (
	// authStateCookieName binds a provider sign-in to the browser that started it
	authStateCookieName = "broker.auth-state"

	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random string: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Server) secureCookies(r *http.Request) bool {
	return s.config.GetSecureCookies() || getScheme(r) == "https"
}

// writeClaim persists claim in the session cookie
func (s *Server) writeClaim(w http.ResponseWriter, r *http.Request, claim *sessions.Claim) error {
	value, err := s.codec.Encode(claim)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.codec.MaxAge().Seconds()),
	})
	return nil
}

func (s *Server) clearClaimCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) setAuthStateCookie(w http.ResponseWriter, r *http.Request, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authStateCookieName,
		Value:    state,
		Path:     RouteAuthPrefix,
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetAuthFlowTimeout().Seconds()),
	})
}

func (s *Server) clearAuthStateCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authStateCookieName,
		Value:    "",
		Path:     RouteAuthPrefix,
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// safeCallbackURL accepts only local absolute paths, so a callbackUrl can
// never send the user to another site. Anything else becomes the home path.
func (s *Server) safeCallbackURL(raw string) string {
	home := s.config.GetHomePath()
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return home
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return home
	}
	return u.RequestURI()
}

// trustedOrigin reports whether a state-changing request came from this site
// or a configured CORS origin. Requests without an Origin header are not from
// a cross-site browser form.
func (s *Server) trustedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == getScheme(r)+"://"+r.Host {
		return true
	}
	return s.config.GetAllowedOrigins().IsAllowedOrigin(origin)
}

// wantsJSON reports whether the caller expects a JSON reply instead of a redirect
func wantsJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == contentTypeJSON {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), contentTypeJSON) {
		return true
	}
	return r.FormValue("json") == "true"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write JSON response")
	}
}

// authResult is the reply to sign-in, registration and sign-out calls
type authResult struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// redirectSuccess replies with a JSON result for API callers and a redirect otherwise
func redirectSuccess(w http.ResponseWriter, r *http.Request, status int, path string) {
	if wantsJSON(r) {
		writeJSON(w, status, authResult{OK: true, URL: path})
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError replies with a JSON error for API callers and a login redirect otherwise
func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, status int, message, errorCode, callbackURL string) {
	if wantsJSON(r) {
		writeJSON(w, status, authResult{Error: message})
		return
	}
	http.Redirect(w, r, s.loginURL(callbackURL, errorCode), http.StatusSeeOther)
}
