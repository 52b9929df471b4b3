package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/team/models"
	id "crm/pkg/domain"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.SaveTeam(ctx, &models.Team{ID: 7, Name: "Secretaria", IsActive: true}))
	for _, m := range []models.Membership{
		{TeamID: 7, UserID: 30, IsActive: true},
		{TeamID: 7, UserID: 10, IsActive: true},
		{TeamID: 7, UserID: 20, IsActive: false},
		{TeamID: 8, UserID: 40, IsActive: true},
	} {
		require.NoError(t, s.SaveMembership(ctx, &m))
	}

	t.Run("find team", func(t *testing.T) {
		team, err := s.FindTeam(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Secretaria", team.Name)

		_, err = s.FindTeam(ctx, 9)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("active members sorted by user id", func(t *testing.T) {
		members, err := s.ListActiveMembers(ctx, 7)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, id.IdentityID(10), members[0].UserID)
		assert.Equal(t, id.IdentityID(30), members[1].UserID)
	})

	t.Run("users known through memberships", func(t *testing.T) {
		ok, err := s.UserExists(ctx, 20)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.UserExists(ctx, 99)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
