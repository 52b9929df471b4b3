//go:build integration

package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/assignment/models"
	id "crm/pkg/domain"
	"crm/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client)
	ctx := context.Background()
	window := 300 * time.Millisecond

	check := func(teamID id.TeamID) bool {
		blocked, err := store.CheckAndRecord(ctx, models.Operation{ConversationID: 42, TeamID: teamID}, window)
		require.NoError(t, err)
		return blocked
	}

	assert.False(t, check(7))
	assert.True(t, check(7))
	assert.False(t, check(8), "different target replaces the record")
	assert.False(t, check(7))

	ttl, err := rc.Client.PTTL(ctx, conversationKey(42)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, window)

	time.Sleep(window + 100*time.Millisecond)
	assert.False(t, check(7), "window elapsed")

	require.NoError(t, store.Clear(ctx, 42))
	assert.False(t, check(7))
}
