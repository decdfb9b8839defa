package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-broker/auth"
	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/backend/backendfake"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/jrsteele09/go-auth-broker/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var githubToken = token.ProviderToken{Provider: "github", AccessToken: "gho_provider"}

func newBuilder() *sessions.Builder {
	return sessions.NewBuilder(sessions.WithNowTime(func() time.Time {
		return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	}))
}

// priorClaim is a claim left by an earlier credential login in the same flow
func priorClaim(b *sessions.Builder) *sessions.Claim {
	return b.FromOutcome(nil, token.Outcome{
		Kind: token.KindCredential,
		Pair: token.Pair{AccessToken: "A", RefreshToken: "R"},
		User: users.Profile{ID: json.RawMessage(`1`), Username: "alice"},
	})
}

func TestFederated_Exchange(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc := backendfake.NewFakeTokenService()
		svc.FederatedLoginFunc = func(_ context.Context, pt token.ProviderToken) (*backend.TokenResponse, error) {
			require.Equal(t, githubToken, pt)
			return &backend.TokenResponse{AccessToken: "BA", RefreshToken: "BR", User: users.Profile{ID: json.RawMessage(`9`), Username: "octocat"}}, nil
		}

		outcome, err := auth.NewFederated(svc, newBuilder()).Exchange(ctx, githubToken)
		require.NoError(t, err)
		require.Equal(t, token.KindFederated, outcome.Kind)
		require.Equal(t, "github", outcome.Provider)
		require.Equal(t, token.Pair{AccessToken: "BA", RefreshToken: "BR"}, outcome.Pair)
	})

	t.Run("missing provider token", func(t *testing.T) {
		svc := backendfake.NewFakeTokenService()
		_, err := auth.NewFederated(svc, newBuilder()).Exchange(ctx, token.ProviderToken{Provider: "github"})
		require.ErrorIs(t, err, errors.ErrFederationDegraded)
		require.Zero(t, svc.Calls())
	})

	t.Run("rejected", func(t *testing.T) {
		svc := backendfake.NewFakeTokenService()
		_, err := auth.NewFederated(svc, newBuilder()).Exchange(ctx, githubToken)
		require.ErrorIs(t, err, errors.ErrFederationDegraded)
		var se *backend.StatusError
		require.ErrorAs(t, err, &se)
	})
}

func TestFederated_ExchangeOrKeep(t *testing.T) {
	ctx := context.Background()

	t.Run("success overwrites prior", func(t *testing.T) {
		b := newBuilder()
		prior := priorClaim(b)

		svc := backendfake.NewFakeTokenService()
		svc.FederatedLoginFunc = func(context.Context, token.ProviderToken) (*backend.TokenResponse, error) {
			return &backend.TokenResponse{AccessToken: "BA", RefreshToken: "BR", User: users.Profile{ID: json.RawMessage(`9`), Username: "octocat"}}, nil
		}

		claim, exchanged := auth.NewFederated(svc, b).ExchangeOrKeep(ctx, prior, githubToken)
		require.True(t, exchanged)
		require.Equal(t, "BA", claim.Pair.AccessToken)
		require.Equal(t, "BR", claim.Pair.RefreshToken)
		require.Equal(t, "octocat", claim.User.Username)
		require.NotEqual(t, githubToken.AccessToken, claim.Pair.AccessToken)

		require.Equal(t, "A", prior.Pair.AccessToken)
	})

	t.Run("network error keeps prior access token", func(t *testing.T) {
		b := newBuilder()
		prior := priorClaim(b)

		var logs bytes.Buffer
		svc := backendfake.NewFakeTokenService()
		svc.FederatedLoginFunc = func(context.Context, token.ProviderToken) (*backend.TokenResponse, error) {
			return nil, fmt.Errorf("%w: connection reset", errors.ErrUpstreamUnavailable)
		}

		f := auth.NewFederated(svc, b, auth.WithLogger(zerolog.New(&logs)))
		claim, exchanged := f.ExchangeOrKeep(ctx, prior, githubToken)
		require.False(t, exchanged)
		require.Same(t, prior, claim)
		require.Equal(t, "A", claim.Pair.AccessToken)
		require.Equal(t, "R", claim.Pair.RefreshToken)

		require.Contains(t, logs.String(), `"level":"warn"`)
		require.Contains(t, logs.String(), `"provider":"github"`)
		require.Contains(t, logs.String(), "connection reset")
		require.NotContains(t, logs.String(), githubToken.AccessToken)
	})

	t.Run("failure without prior yields no claim", func(t *testing.T) {
		svc := backendfake.NewFakeTokenService()
		f := auth.NewFederated(svc, newBuilder(), auth.WithLogger(zerolog.Nop()))
		claim, exchanged := f.ExchangeOrKeep(ctx, nil, githubToken)
		require.False(t, exchanged)
		require.Nil(t, claim)
	})
}

func TestRefresher_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("new access token", func(t *testing.T) {
		b := newBuilder()
		prior := priorClaim(b)
		svc := backendfake.NewFakeTokenService()
		svc.RefreshFunc = func(_ context.Context, refreshToken string) (*backend.RefreshResponse, error) {
			require.Equal(t, "R", refreshToken)
			return &backend.RefreshResponse{AccessToken: "A2"}, nil
		}

		next, err := auth.NewRefresher(svc, b).Refresh(ctx, prior)
		require.NoError(t, err)
		require.Equal(t, token.Pair{AccessToken: "A2", RefreshToken: "R"}, next.Pair)
		require.Equal(t, "A", prior.Pair.AccessToken)
	})

	t.Run("rejected refresh token", func(t *testing.T) {
		b := newBuilder()
		svc := backendfake.NewFakeTokenService()
		_, err := auth.NewRefresher(svc, b).Refresh(ctx, priorClaim(b))
		require.ErrorIs(t, err, errors.ErrInvalidClaim)
	})

	t.Run("no claim", func(t *testing.T) {
		svc := backendfake.NewFakeTokenService()
		_, err := auth.NewRefresher(svc, newBuilder()).Refresh(ctx, nil)
		require.ErrorIs(t, err, errors.ErrInvalidClaim)
		require.Zero(t, svc.Calls())
	})
}
