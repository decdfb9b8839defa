package sessions

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/jrsteele09/go-auth-broker/users"
)

// ClaimIssuer is the iss value written into every persisted claim
const ClaimIssuer = "go-auth-broker"

// persistedClaim is the JWT body a claim is stored as between requests.
type persistedClaim struct {
	User         users.Profile `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	Kind         token.Kind    `json:"kind"`
	Provider     string        `json:"provider,omitempty"`
	jwtlib.RegisteredClaims
}

// Codec persists claims as signed JWTs and reads them back.
type Codec struct {
	signer  token.Signer
	maxAge  time.Duration
	nowTime func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithCodecNowTime sets the clock used to check expiry (primarily for testing)
func WithCodecNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// NewCodec creates a Codec. Claims expire maxAge after they were issued.
func NewCodec(signer token.Signer, maxAge time.Duration, options ...CodecOption) *Codec {
	c := &Codec{
		signer:  signer,
		maxAge:  maxAge,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// MaxAge is how long an encoded claim stays valid
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode signs claim into its persisted form
func (c *Codec) Encode(claim *Claim) (string, error) {
	if !claim.Valid() {
		return "", fmt.Errorf("%w: token pair incomplete", errors.ErrInvalidClaim)
	}

	body := persistedClaim{
		User:         claim.User,
		AccessToken:  claim.Pair.AccessToken,
		RefreshToken: claim.Pair.RefreshToken,
		Kind:         claim.Kind,
		Provider:     claim.Provider,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        claim.ID,
			Issuer:    ClaimIssuer,
			Subject:   claim.User.Username,
			IssuedAt:  jwtlib.NewNumericDate(claim.IssuedAt),
			ExpiresAt: jwtlib.NewNumericDate(claim.IssuedAt.Add(c.maxAge)),
		},
	}

	signed, err := c.signer.Sign(body)
	if err != nil {
		return "", fmt.Errorf("encode claim: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and rebuilds the claim it carries.
// Decoding the same string always yields an equal claim.
func (c *Codec) Decode(raw string) (*Claim, error) {
	if raw == "" {
		return nil, errors.ErrInvalidClaim
	}

	var body persistedClaim
	_, err := jwtlib.ParseWithClaims(raw, &body, c.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(ClaimIssuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithIssuedAt(),
		jwtlib.WithTimeFunc(c.nowTime),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", errors.ErrClaimExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidClaim, err)
	}

	claim := &Claim{
		ID:       body.ID,
		Kind:     body.Kind,
		Provider: body.Provider,
		User:     body.User,
		Pair: token.Pair{
			AccessToken:  body.AccessToken,
			RefreshToken: body.RefreshToken,
		},
	}
	if body.IssuedAt != nil {
		claim.IssuedAt = body.IssuedAt.Time.UTC()
	}
	if !claim.Valid() {
		return nil, fmt.Errorf("%w: token pair incomplete", errors.ErrInvalidClaim)
	}
	return claim, nil
}
