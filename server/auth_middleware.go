package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-auth-broker/gate"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/jrsteele09/go-auth-broker/token/jwt"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaim stores the decoded session claim
	ContextKeyClaim ContextKey = "claim"
	// ContextKeySession stores the session rebuilt from the claim
	ContextKeySession ContextKey = "session"
)

// ClaimFromContext returns the claim SessionMiddleware decoded for this request
func ClaimFromContext(ctx context.Context) (*sessions.Claim, bool) {
	claim, ok := ctx.Value(ContextKeyClaim).(*sessions.Claim)
	return claim, ok && claim.Valid()
}

// SessionFromContext returns the signed-in user's session for this request
func SessionFromContext(ctx context.Context) (sessions.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(sessions.Session)
	return session, ok
}

// WithClaim returns ctx carrying claim and the session built from it
func (s *Server) WithClaim(ctx context.Context, claim *sessions.Claim) context.Context {
	session, ok := s.builder.Session(claim)
	if !ok {
		return ctx
	}
	ctx = context.WithValue(ctx, ContextKeyClaim, claim)
	return context.WithValue(ctx, ContextKeySession, session)
}

// SessionMiddleware decodes the claim cookie, if any, into the request context.
// A cookie that fails verification or has expired is cleared.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.GetSessionCookieName())
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}

		claim, err := s.codec.Decode(cookie.Value)
		if err != nil {
			if !errors.Is(err, errors.ErrClaimExpired) {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("discarding unverifiable session cookie")
			}
			s.clearClaimCookie(w, r)
			next(w, r)
			return
		}
		if s.revoked.IsRevoked(claim.ID) {
			s.clearClaimCookie(w, r)
			next(w, r)
			return
		}

		if r.URL.Path != RouteRefresh && r.URL.Path != RouteSignOut {
			claim = s.refreshIfExpiring(w, r, claim)
			if claim == nil {
				next(w, r)
				return
			}
		}

		next(w, r.WithContext(s.WithClaim(r.Context(), claim)))
	}
}

// refreshIfExpiring swaps in a fresh backend access token when the current one
// is about to expire. A rejected refresh ends the session (nil is returned); an
// unreachable backend keeps the current claim.
func (s *Server) refreshIfExpiring(w http.ResponseWriter, r *http.Request, claim *sessions.Claim) *sessions.Claim {
	if !jwt.NeedsRefresh(claim.Pair.AccessToken, time.Now(), s.config.GetRefreshLeeway()) {
		return claim
	}

	next, err := s.refresher.Refresh(r.Context(), claim)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidClaim) {
			log.Info().Err(err).Str("claim_id", claim.ID).Msg("access token refresh rejected, signing out")
			s.clearClaimCookie(w, r)
			return nil
		}
		log.Warn().Err(err).Str("claim_id", claim.ID).Msg("access token refresh failed, keeping session")
		return claim
	}

	if err := s.writeClaim(w, r, next); err != nil {
		logError(r.Method, r.URL.Path, err)
		return claim
	}
	return next
}

// GateMiddleware applies the bypass list and then the route gate.
// Denied requests are sent to the login page with the original path as callbackUrl.
func (s *Server) GateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, loggedIn := ClaimFromContext(r.Context())

		decision := s.policy.Decide(r.URL.Path, loggedIn)
		switch decision.Kind {
		case gate.Allow, gate.Bypassed:
			next(w, r)
		case gate.Redirect:
			http.Redirect(w, r, decision.Location, http.StatusFound)
		default:
			http.Redirect(w, r, s.loginURL(r.URL.RequestURI(), ""), http.StatusFound)
		}
	}
}

// loginURL builds the login page URL carrying callbackURL and an optional error code
func (s *Server) loginURL(callbackURL, errorCode string) string {
	q := url.Values{}
	if callbackURL != "" {
		q.Set(ParamCallbackURL, callbackURL)
	}
	if errorCode != "" {
		q.Set(ParamError, errorCode)
	}
	if len(q) == 0 {
		return s.policy.Gate.LoginPath()
	}
	return s.policy.Gate.LoginPath() + "?" + q.Encode()
}
