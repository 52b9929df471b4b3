package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crm/internal/team/models"
	id "crm/pkg/domain"
)

type memberKey struct {
	team id.TeamID
	user id.IdentityID
}

type InMemoryStore struct {
	mu      sync.RWMutex
	teams   map[id.TeamID]models.Team
	members map[memberKey]models.Membership
	users   map[id.IdentityID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		teams:   make(map[id.TeamID]models.Team),
		members: make(map[memberKey]models.Membership),
		users:   make(map[id.IdentityID]struct{}),
	}
}

func (s *InMemoryStore) SaveTeam(_ context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = *team
	return nil
}

// SaveUser registers a user id so UserExists can see it.
func (s *InMemoryStore) SaveUser(_ context.Context, userID id.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	return nil
}

// SaveMembership inserts or replaces a membership. The user is registered too.
func (s *InMemoryStore) SaveMembership(_ context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey{team: m.TeamID, user: m.UserID}] = *m
	s.users[m.UserID] = struct{}{}
	return nil
}

func (s *InMemoryStore) FindTeam(_ context.Context, teamID id.TeamID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	return &team, nil
}

// ListActiveMembers returns active memberships ordered by user id.
func (s *InMemoryStore) ListActiveMembers(_ context.Context, teamID id.TeamID) ([]models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Membership
	for key, m := range s.members {
		if key.team == teamID && m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *InMemoryStore) UserExists(_ context.Context, userID id.IdentityID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}
