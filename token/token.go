package token

import (
	"strings"

	"github.com/jrsteele09/go-auth-broker/users"
)

// Pair is the backend-issued bearer pair. The broker never looks inside the
// tokens; they are opaque strings owned by the session claim once produced.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present.
func (p Pair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Credentials is a username/password pair. It only lives for one exchange.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Missing reports whether either field is empty, meaning no exchange should be attempted.
func (c Credentials) Missing() bool {
	return strings.TrimSpace(c.Username) == "" || c.Password == ""
}

// ProviderToken is the access token a federated identity provider issued.
// It is only ever sent to the backend, never stored in a session.
type ProviderToken struct {
	Provider    string
	AccessToken string
}

// Kind tags how an exchange outcome was produced.
type Kind string

const (
	KindNone         Kind = "none"
	KindCredential   Kind = "credentials"
	KindFederated    Kind = "federated"
	KindRegistration Kind = "registration"
)

// Outcome is the result of an exchange attempt. KindNone means no attempt was made.
type Outcome struct {
	Kind     Kind
	Provider string // Set for KindFederated
	Pair     Pair
	User     users.Profile
}

// None is the outcome of an exchange that was never attempted.
func None() Outcome {
	return Outcome{Kind: KindNone}
}

// Succeeded reports whether the outcome carries a usable token pair.
func (o Outcome) Succeeded() bool {
	return o.Kind != KindNone && o.Kind != "" && o.Pair.Complete()
}
