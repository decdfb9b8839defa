package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
)

// TokenIntrospection is what the broker can read from a backend access token
// without holding the backend's signing key. None of it is verified: it is
// only used to decide when to ask the backend for a fresh token.
type TokenIntrospection struct {
	Exp *time.Time // Expiration, nil when the token carries none
	Iat *time.Time // Issued at time
	Sub string     // Backend user id
	Jti string     // Token id
}

// Inspect decodes rawToken's payload. Opaque (non-JWT) tokens return an error.
func Inspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "empty access token")
	}

	var claims jwtlib.RegisteredClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return nil, errors.Wrapf(err, "inspect access token")
	}

	ti := &TokenIntrospection{Sub: claims.Subject, Jti: claims.ID}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		ti.Exp = &exp
	}
	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		ti.Iat = &iat
	}
	return ti, nil
}

// ExpiresWithin reports whether the token is expired at now+leeway
func (ti *TokenIntrospection) ExpiresWithin(now time.Time, leeway time.Duration) bool {
	return ti != nil && ti.Exp != nil && !now.Add(leeway).Before(*ti.Exp)
}

// NeedsRefresh reports whether rawToken is a JWT that expires within leeway of now.
// Opaque tokens never need a refresh.
func NeedsRefresh(rawToken string, now time.Time, leeway time.Duration) bool {
	ti, err := Inspect(rawToken)
	if err != nil {
		return false
	}
	return ti.ExpiresWithin(now, leeway)
}
