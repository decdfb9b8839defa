package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-broker/auth"
	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/gate"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/rs/zerolog/log"
)

const maxRequestBytes = 1 << 20

// Messages shown to end users; backend messages are logged, not echoed
const (
	messageMissingCredentials = "Username and password are required"
	messageUnavailable        = "Authentication service unavailable"
)

var loginErrorMessages = map[string]string{
	ErrorCodeCredentials:  auth.DefaultInvalidCredentialsMessage,
	ErrorCodeOAuth:        "Sign in with the provider failed",
	ErrorCodeFederation:   "Could not complete sign in with the provider",
	ErrorCodeUnavailable:  messageUnavailable,
	ErrorCodeRegistration: auth.DefaultRegistrationMessage,
}

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName     string
	Error       string
	CallbackURL string
	Action      string
	Providers   []providerLink
}

// LoginPageHandler displays the login page. A signed-in user is sent home.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, loggedIn := ClaimFromContext(r.Context())
		if d := s.policy.Gate.Evaluate(r.URL.Path, loggedIn); d.Kind == gate.Redirect {
			http.Redirect(w, r, d.Location, http.StatusFound)
			return
		}

		q := r.URL.Query()
		callbackURL := s.safeCallbackURL(q.Get(ParamCallbackURL))
		data := LoginPageData{
			AppName:     s.config.GetAppName(),
			CallbackURL: callbackURL,
			Action:      RouteCredentialsCallback,
			Providers:   s.providerLinks(callbackURL),
		}
		if code := q.Get(ParamError); code != "" {
			msg, ok := loginErrorMessages[code]
			if !ok {
				msg = "Sign in failed"
			}
			data.Error = msg
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.Header().Set("Cache-Control", "no-store")
		if err := s.loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
		}
	}
}

// credentialsRequest is the body of a credentials sign-in, JSON or form encoded
type credentialsRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

// registerRequest is the body of a sign-up, JSON or form encoded
type registerRequest struct {
	backend.RegisterRequest
	CallbackURL string `json:"callbackUrl"`
}

// decodeRequest fills dst from a JSON body, or calls fromForm for form posts
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any, fromForm func()) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.Wrapf(err, "decode request body")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Wrapf(err, "parse form")
	}
	fromForm()
	return nil
}

// CredentialsCallbackHandler signs a user in with username and password
func (s *Server) CredentialsCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		err := decodeRequest(w, r, &req, func() {
			req.Username = r.PostFormValue("username")
			req.Password = r.PostFormValue("password")
			req.CallbackURL = r.PostFormValue(ParamCallbackURL)
		})
		if err != nil {
			writeJSON(w, http.StatusBadRequest, authResult{Error: "Invalid request body"})
			return
		}
		callbackURL := s.safeCallbackURL(req.CallbackURL)

		outcome, err := s.credentials.Exchange(r.Context(), token.Credentials{Username: req.Username, Password: req.Password})
		if err != nil {
			s.exchangeFailed(w, r, err, callbackURL)
			return
		}
		if outcome.Kind == token.KindNone {
			s.redirectWithError(w, r, http.StatusBadRequest, messageMissingCredentials, ErrorCodeCredentials, callbackURL)
			return
		}

		s.completeSignIn(w, r, outcome, http.StatusOK, callbackURL)
	}
}

// RegisterHandler creates a backend account and signs the new user in
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		err := decodeRequest(w, r, &req, func() {
			req.Username = r.PostFormValue("username")
			req.Password = r.PostFormValue("password")
			req.Email = r.PostFormValue("email")
			req.FirstName = r.PostFormValue("first_name")
			req.LastName = r.PostFormValue("last_name")
			req.CallbackURL = r.PostFormValue(ParamCallbackURL)
		})
		if err != nil {
			writeJSON(w, http.StatusBadRequest, authResult{Error: "Invalid request body"})
			return
		}
		callbackURL := s.safeCallbackURL(req.CallbackURL)

		outcome, err := s.registration.Register(r.Context(), req.RegisterRequest)
		if err != nil {
			s.exchangeFailed(w, r, err, callbackURL)
			return
		}
		if outcome.Kind == token.KindNone {
			s.redirectWithError(w, r, http.StatusBadRequest, messageMissingCredentials, ErrorCodeRegistration, callbackURL)
			return
		}

		s.completeSignIn(w, r, outcome, http.StatusCreated, callbackURL)
	}
}

// completeSignIn turns a successful outcome into the session cookie
func (s *Server) completeSignIn(w http.ResponseWriter, r *http.Request, outcome token.Outcome, status int, callbackURL string) {
	prior, _ := ClaimFromContext(r.Context())
	claim := s.builder.FromOutcome(prior, outcome)
	if err := s.writeClaim(w, r, claim); err != nil {
		logError(r.Method, r.URL.Path, err)
		s.redirectWithError(w, r, http.StatusInternalServerError, "Failed to create session", ErrorCodeUnavailable, callbackURL)
		return
	}
	log.Info().
		Str("kind", string(outcome.Kind)).
		Str("username", outcome.User.Username).
		Str("claim_id", claim.ID).
		Msg("signed in")
	redirectSuccess(w, r, status, callbackURL)
}

// exchangeFailed maps an exchange error to a response
func (s *Server) exchangeFailed(w http.ResponseWriter, r *http.Request, err error, callbackURL string) {
	var regErr *auth.RegistrationError
	switch {
	case errors.Is(err, errors.ErrInvalidCredentials):
		log.Info().Err(err).Str("path", r.URL.Path).Msg("backend rejected credentials")
		s.redirectWithError(w, r, http.StatusUnauthorized, auth.DefaultInvalidCredentialsMessage, ErrorCodeCredentials, callbackURL)
	case errors.As(err, &regErr):
		log.Info().Err(err).Int("status", regErr.Status).Msg("backend rejected registration")
		s.redirectWithError(w, r, http.StatusBadRequest, regErr.Message, ErrorCodeRegistration, callbackURL)
	default:
		logError(r.Method, r.URL.Path, err)
		s.redirectWithError(w, r, http.StatusBadGateway, messageUnavailable, ErrorCodeUnavailable, callbackURL)
	}
}
