package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/pkg/platform/sentinel"
)

func TestInMemoryStore_RevokeAndExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "sess-1", time.Hour))

	revoked, err := store.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "sess-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(time.Hour)
	revoked, err = store.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation ends with the ttl")
}

func TestInMemoryStore_RejectsNonPositiveTTL(t *testing.T) {
	err := NewInMemoryStore().Revoke(context.Background(), "sess-1", 0)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}
