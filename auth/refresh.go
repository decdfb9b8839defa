package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/sessions"
)

// Refresher obtains a new access token for an existing claim.
// The refresh token itself is never rotated.
type Refresher struct {
	service TokenService
	builder *sessions.Builder
}

// NewRefresher creates a Refresher backed by service
func NewRefresher(service TokenService, builder *sessions.Builder) *Refresher {
	return &Refresher{service: service, builder: builder}
}

// Refresh returns a new claim carrying a fresh access token; claim is left as it was.
func (r *Refresher) Refresh(ctx context.Context, claim *sessions.Claim) (*sessions.Claim, error) {
	if !claim.Valid() {
		return nil, errors.ErrInvalidClaim
	}

	resp, err := r.service.Refresh(ctx, claim.Pair.RefreshToken)
	if err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidClaim, err)
		}
		return nil, errors.Wrapf(err, "refresh access token")
	}
	if resp == nil || resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token", errors.ErrMalformedResponse)
	}

	return r.builder.WithAccessToken(claim, resp.AccessToken), nil
}
