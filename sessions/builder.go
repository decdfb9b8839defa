package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-broker/token"
)

// Builder turns exchange outcomes into claims and claims into sessions.
// It is the only component that reads or writes token fields, and it never
// modifies a claim it was given.
type Builder struct {
	nowTime func() time.Time
	newID   func() string
}

// BuilderOption defines a function type to modify the Builder instance.
type BuilderOption func(*Builder)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.nowTime = nowFunc
	}
}

// WithIDFunc sets the claim ID generator (primarily for testing)
func WithIDFunc(idFunc func() string) BuilderOption {
	return func(b *Builder) {
		b.newID = idFunc
	}
}

// NewBuilder creates a Builder
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{
		nowTime: time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// FromOutcome merges an exchange outcome into the in-flight claim.
// An outcome that did not succeed leaves prior as it is (possibly nil).
// A successful outcome replaces the pair and profile wholesale.
func (b *Builder) FromOutcome(prior *Claim, outcome token.Outcome) *Claim {
	if !outcome.Succeeded() {
		return prior
	}
	return &Claim{
		ID:       b.newID(),
		Kind:     outcome.Kind,
		Provider: outcome.Provider,
		User:     outcome.User.Clone(),
		Pair:     outcome.Pair,
		IssuedAt: b.now(),
	}
}

// WithAccessToken returns a copy of claim carrying a new access token.
// The refresh token, identity and claim ID are unchanged.
func (b *Builder) WithAccessToken(claim *Claim, accessToken string) *Claim {
	if !claim.Valid() || accessToken == "" {
		return claim
	}
	next := b.copy(claim)
	next.Pair.AccessToken = accessToken
	next.IssuedAt = b.now()
	return next
}

// Session rebuilds the application-facing session from a claim.
// It returns false when the claim cannot back a session.
func (b *Builder) Session(claim *Claim) (Session, bool) {
	if !claim.Valid() {
		return Session{}, false
	}
	return Session{
		User:         claim.User.Clone(),
		AccessToken:  claim.Pair.AccessToken,
		RefreshToken: claim.Pair.RefreshToken,
	}, true
}

func (b *Builder) copy(claim *Claim) *Claim {
	c := *claim
	c.User = claim.User.Clone()
	return &c
}

func (b *Builder) now() time.Time {
	return b.nowTime().UTC().Truncate(time.Second)
}
