package sessions

import (
	"time"

	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/jrsteele09/go-auth-broker/users"
)

// Claim is what the broker persists between requests for one signed-in user.
// A claim always carries a complete token pair; see Valid.
type Claim struct {
	ID       string        // Unique claim identifier (UUID), stable across refreshes
	Kind     token.Kind    // Which exchange produced the claim
	Provider string        // Federated provider name, empty for credential logins
	User     users.Profile // Backend user profile, verbatim
	Pair     token.Pair    // Backend-issued bearer pair
	IssuedAt time.Time     // When the pair was attached, second precision
}

// Valid reports whether the claim can back a session.
func (c *Claim) Valid() bool {
	return c != nil && c.Pair.Complete()
}

// Session is the record the rest of the application sees.
type Session struct {
	User         users.Profile `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}
