package sessions_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/internal/utils"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/jrsteele09/go-auth-broker/users"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-test-secret-test-secret"
	testClaimID = "claim-1"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestBuilder() *sessions.Builder {
	return sessions.NewBuilder(
		sessions.WithNowTime(func() time.Time { return testNow }),
		sessions.WithIDFunc(func() string { return testClaimID }),
	)
}

func newTestCodec(t *testing.T, now func() time.Time) *sessions.Codec {
	t.Helper()
	signer, err := token.NewHMACSigner(testSecret)
	require.NoError(t, err)
	return sessions.NewCodec(signer, time.Hour, sessions.WithCodecNowTime(now))
}

func aliceOutcome() token.Outcome {
	return token.Outcome{
		Kind: token.KindCredential,
		Pair: token.Pair{AccessToken: "A", RefreshToken: "R"},
		User: users.Profile{ID: json.RawMessage(`1`), Username: "alice"},
	}
}

func TestBuilder_FromOutcome(t *testing.T) {
	b := newTestBuilder()

	t.Run("successful outcome becomes the claim", func(t *testing.T) {
		claim := b.FromOutcome(nil, aliceOutcome())
		require.NotNil(t, claim)
		require.Equal(t, testClaimID, claim.ID)
		require.Equal(t, token.KindCredential, claim.Kind)
		require.Equal(t, token.Pair{AccessToken: "A", RefreshToken: "R"}, claim.Pair)
		require.Equal(t, `1`, string(claim.User.ID))
		require.Equal(t, testNow, claim.IssuedAt)
	})

	t.Run("no attempt keeps prior", func(t *testing.T) {
		prior := b.FromOutcome(nil, aliceOutcome())
		require.Same(t, prior, b.FromOutcome(prior, token.None()))
	})

	t.Run("no attempt and no prior means no claim", func(t *testing.T) {
		require.Nil(t, b.FromOutcome(nil, token.None()))
	})

	t.Run("partial pair never becomes a claim", func(t *testing.T) {
		partial := aliceOutcome()
		partial.Pair.RefreshToken = ""
		require.Nil(t, b.FromOutcome(nil, partial))
	})

	t.Run("success replaces prior without touching it", func(t *testing.T) {
		prior := b.FromOutcome(nil, aliceOutcome())
		next := b.FromOutcome(prior, token.Outcome{
			Kind:     token.KindFederated,
			Provider: "github",
			Pair:     token.Pair{AccessToken: "BA", RefreshToken: "BR"},
			User:     users.Profile{ID: json.RawMessage(`1`), Username: "alice", Image: utils.Ptr("https://img")},
		})
		require.Equal(t, "BA", next.Pair.AccessToken)
		require.Equal(t, "github", next.Provider)
		require.Equal(t, "A", prior.Pair.AccessToken)
		require.Nil(t, prior.User.Image)
	})

	t.Run("claim does not alias outcome profile", func(t *testing.T) {
		o := aliceOutcome()
		o.User.Email = utils.Ptr("alice@example.com")
		claim := b.FromOutcome(nil, o)
		*o.User.Email = "mallory@example.com"
		require.Equal(t, "alice@example.com", *claim.User.Email)
	})
}

func TestBuilder_Session(t *testing.T) {
	b := newTestBuilder()

	t.Run("alice scenario", func(t *testing.T) {
		s, ok := b.Session(b.FromOutcome(nil, aliceOutcome()))
		require.True(t, ok)

		out, err := json.Marshal(s)
		require.NoError(t, err)
		require.JSONEq(t, `{"user":{"id":1,"username":"alice"},"accessToken":"A","refreshToken":"R"}`, string(out))
	})

	t.Run("no claim no session", func(t *testing.T) {
		_, ok := b.Session(nil)
		require.False(t, ok)
		_, ok = b.Session(&sessions.Claim{Pair: token.Pair{AccessToken: "A"}})
		require.False(t, ok)
	})
}

func TestBuilder_WithAccessToken(t *testing.T) {
	later := testNow.Add(10 * time.Minute)
	clock := testNow
	b := sessions.NewBuilder(
		sessions.WithNowTime(func() time.Time { return clock }),
		sessions.WithIDFunc(func() string { return testClaimID }),
	)

	claim := b.FromOutcome(nil, aliceOutcome())
	clock = later
	next := b.WithAccessToken(claim, "A2")

	require.Equal(t, "A2", next.Pair.AccessToken)
	require.Equal(t, "R", next.Pair.RefreshToken)
	require.Equal(t, claim.ID, next.ID)
	require.Equal(t, later, next.IssuedAt)

	require.Equal(t, "A", claim.Pair.AccessToken)
	require.Equal(t, testNow, claim.IssuedAt)

	require.Same(t, claim, b.WithAccessToken(claim, ""))
}

func TestCodec_RoundTrip(t *testing.T) {
	b := newTestBuilder()
	codec := newTestCodec(t, func() time.Time { return testNow.Add(time.Minute) })

	claim := b.FromOutcome(nil, aliceOutcome())
	raw, err := codec.Encode(claim)
	require.NoError(t, err)
	require.Len(t, strings.Split(raw, "."), 3)

	decoded, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, claim.ID, decoded.ID)
	require.Equal(t, claim.Kind, decoded.Kind)
	require.Equal(t, claim.Pair, decoded.Pair)
	require.Equal(t, claim.IssuedAt, decoded.IssuedAt)
	require.True(t, claim.User.Equal(decoded.User))
}

func TestCodec_Idempotent(t *testing.T) {
	b := newTestBuilder()
	codec := newTestCodec(t, func() time.Time { return testNow })

	profile := users.Profile{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"username":"alice","email":"a@example.com","is_staff":true}`), &profile))
	o := aliceOutcome()
	o.User = profile

	raw, err := codec.Encode(b.FromOutcome(nil, o))
	require.NoError(t, err)

	first, err := codec.Decode(raw)
	require.NoError(t, err)
	second, err := codec.Decode(raw)
	require.NoError(t, err)

	s1, ok := b.Session(first)
	require.True(t, ok)
	s2, ok := b.Session(second)
	require.True(t, ok)

	j1, err := json.Marshal(s1)
	require.NoError(t, err)
	j2, err := json.Marshal(s2)
	require.NoError(t, err)
	require.Equal(t, j1, j2)
	require.JSONEq(t, `{"user":{"id":1,"username":"alice","email":"a@example.com","is_staff":true},"accessToken":"A","refreshToken":"R"}`, string(j1))
}

func TestCodec_Errors(t *testing.T) {
	b := newTestBuilder()
	claim := b.FromOutcome(nil, aliceOutcome())

	t.Run("incomplete claim is not encoded", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		_, err := codec.Encode(&sessions.Claim{Pair: token.Pair{AccessToken: "A"}})
		require.ErrorIs(t, err, errors.ErrInvalidClaim)
	})

	t.Run("expired", func(t *testing.T) {
		encoder := newTestCodec(t, func() time.Time { return testNow })
		raw, err := encoder.Encode(claim)
		require.NoError(t, err)

		decoder := newTestCodec(t, func() time.Time { return testNow.Add(2 * time.Hour) })
		_, err = decoder.Decode(raw)
		require.ErrorIs(t, err, errors.ErrClaimExpired)
	})

	t.Run("tampered", func(t *testing.T) {
		codec := newTestCodec(t, func() time.Time { return testNow })
		raw, err := codec.Encode(claim)
		require.NoError(t, err)

		parts := strings.Split(raw, ".")
		parts[2] = strings.Repeat("A", len(parts[2]))
		_, err = codec.Decode(strings.Join(parts, "."))
		require.ErrorIs(t, err, errors.ErrInvalidClaim)
	})

	t.Run("other secret", func(t *testing.T) {
		codec := newTestCodec(t, func() time.Time { return testNow })
		raw, err := codec.Encode(claim)
		require.NoError(t, err)

		signer, err := token.NewHMACSigner(testSecret + "-rotated")
		require.NoError(t, err)
		other := sessions.NewCodec(signer, time.Hour, sessions.WithCodecNowTime(func() time.Time { return testNow }))
		_, err = other.Decode(raw)
		require.ErrorIs(t, err, errors.ErrInvalidClaim)
	})

	t.Run("empty", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		_, err := codec.Decode("")
		require.ErrorIs(t, err, errors.ErrInvalidClaim)
	})
}
