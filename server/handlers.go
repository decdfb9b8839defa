package server

import (
	"net/http"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/rs/zerolog/log"
)

// HomeHandler renders the signed-in landing page. Other unmatched paths are 404.
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != s.config.GetHomePath() {
			http.NotFound(w, r)
			return
		}

		session, _ := SessionFromContext(r.Context())
		data := map[string]any{
			"AppName":     s.config.GetAppName(),
			"DisplayName": session.User.DisplayName(),
			"SignOut":     RouteSignOut,
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.Header().Set("Cache-Control", "no-store")
		if err := s.homeTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render home template")
		}
	}
}

// SessionHandler returns the current session, or {} when there is none
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// RefreshHandler asks the backend for a new access token and reissues the claim
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claim, ok := ClaimFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, authResult{Error: "Not signed in"})
			return
		}

		next, err := s.refresher.Refresh(r.Context(), claim)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidClaim) {
				log.Info().Err(err).Str("claim_id", claim.ID).Msg("refresh rejected, signing out")
				s.clearClaimCookie(w, r)
				writeJSON(w, http.StatusUnauthorized, authResult{Error: "Session expired"})
				return
			}
			logError(r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusBadGateway, authResult{Error: messageUnavailable})
			return
		}

		if err := s.writeClaim(w, r, next); err != nil {
			logError(r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusInternalServerError, authResult{Error: "Failed to update session"})
			return
		}
		session, _ := s.builder.Session(next)
		writeJSON(w, http.StatusOK, session)
	}
}

// SignOutHandler drops the session cookie and revokes the claim so a copied
// cookie stops working. The backend tokens are not revoked.
// Only POSTs from this site or an allowed origin are accepted.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.trustedOrigin(r) {
			log.Warn().Str("origin", r.Header.Get("Origin")).Msg("refusing cross-site sign out")
			writeJSON(w, http.StatusForbidden, authResult{Error: "Cross-site sign out refused"})
			return
		}

		if claim, ok := ClaimFromContext(r.Context()); ok {
			if err := s.revoked.Add(claim.ID, claim.IssuedAt.Add(s.codec.MaxAge())); err != nil {
				logError(r.Method, r.URL.Path, err)
			}
			log.Info().Str("claim_id", claim.ID).Msg("signed out")
		}
		s.clearClaimCookie(w, r)
		redirectSuccess(w, r, http.StatusOK, s.policy.Gate.LoginPath())
	}
}
