package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRevokedClaimCache(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := now
	cache := token.NewInMemoryRevokedClaimCache(token.WithRevocationNowTime(func() time.Time { return clock }))

	require.NoError(t, cache.Add("claim-1", now.Add(time.Hour)))
	require.NoError(t, cache.Add("", now.Add(time.Hour)))
	require.True(t, cache.IsRevoked("claim-1"))
	require.False(t, cache.IsRevoked("claim-2"))
	require.Equal(t, 1, cache.Len())

	clock = now.Add(2 * time.Hour)
	require.False(t, cache.IsRevoked("claim-1"))

	require.NoError(t, cache.Add("claim-3", clock.Add(time.Hour)))
	require.Equal(t, 1, cache.Len())
	require.True(t, cache.IsRevoked("claim-3"))
}
