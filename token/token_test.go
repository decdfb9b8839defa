package token_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPair_Complete(t *testing.T) {
	require.True(t, token.Pair{AccessToken: "A", RefreshToken: "R"}.Complete())
	require.False(t, token.Pair{AccessToken: "A"}.Complete())
	require.False(t, token.Pair{RefreshToken: "R"}.Complete())
	require.False(t, token.Pair{}.Complete())
}

func TestCredentials_Missing(t *testing.T) {
	tests := []struct {
		name    string
		creds   token.Credentials
		missing bool
	}{
		{"both present", token.Credentials{Username: "alice", Password: "secret"}, false},
		{"no username", token.Credentials{Password: "secret"}, true},
		{"blank username", token.Credentials{Username: "  ", Password: "secret"}, true},
		{"no password", token.Credentials{Username: "alice"}, true},
		{"neither", token.Credentials{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.missing, tt.creds.Missing())
		})
	}
}

func TestOutcome_Succeeded(t *testing.T) {
	pair := token.Pair{AccessToken: "A", RefreshToken: "R"}

	require.False(t, token.None().Succeeded())
	require.False(t, token.Outcome{Kind: token.KindNone, Pair: pair}.Succeeded())
	require.False(t, token.Outcome{Kind: token.KindCredential, Pair: token.Pair{AccessToken: "A"}}.Succeeded())
	require.True(t, token.Outcome{Kind: token.KindCredential, Pair: pair}.Succeeded())
	require.True(t, token.Outcome{Kind: token.KindFederated, Provider: "github", Pair: pair}.Succeeded())
}

func TestHMACSigner(t *testing.T) {
	t.Run("secret required", func(t *testing.T) {
		_, err := token.NewHMACSigner("")
		require.ErrorIs(t, err, errors.ErrSecretRequired)
	})

	t.Run("secret too short", func(t *testing.T) {
		_, err := token.NewHMACSigner("short")
		require.ErrorIs(t, err, errors.ErrSecretTooShort)
	})

	t.Run("sign and verify", func(t *testing.T) {
		s, err := token.NewHMACSigner(testSecret)
		require.NoError(t, err)

		signed, err := s.Sign(jwt.MapClaims{"sub": "alice"})
		require.NoError(t, err)

		parsed, err := jwt.Parse(signed, s.GetVerificationKey)
		require.NoError(t, err)
		require.True(t, parsed.Valid)
		require.Equal(t, "HS256", s.GetSigningMethod().Alg())
	})

	t.Run("different secrets do not verify", func(t *testing.T) {
		a, err := token.NewHMACSigner(testSecret)
		require.NoError(t, err)
		b, err := token.NewHMACSigner(testSecret + "-other")
		require.NoError(t, err)

		signed, err := a.Sign(jwt.MapClaims{"sub": "alice"})
		require.NoError(t, err)

		_, err = jwt.Parse(signed, b.GetVerificationKey)
		require.Error(t, err)
	})
}
