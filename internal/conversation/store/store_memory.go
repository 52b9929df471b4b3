package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm/internal/conversation/models"
	id "crm/pkg/domain"
)

type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[id.ConversationID]models.Conversation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[id.ConversationID]models.Conversation)}
}

func (s *InMemoryStore) Save(_ context.Context, c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = *c
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, conversationID id.ConversationID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	return &c, nil
}

// AssignTeam moves the conversation to teamID and clears any user owner.
func (s *InMemoryStore) AssignTeam(_ context.Context, conversationID id.ConversationID, teamID id.TeamID, method string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	c.AssignedTeamID = teamID
	c.AssignedUserID = 0
	c.AssignmentMethod = method
	c.TeamAssignedAt = &at
	c.UserAssignedAt = nil
	c.UpdatedAt = at
	s.conversations[conversationID] = c
	return nil
}

func (s *InMemoryStore) AssignUser(_ context.Context, conversationID id.ConversationID, userID id.IdentityID, method string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	c.AssignedUserID = userID
	c.AssignmentMethod = method
	c.UserAssignedAt = &at
	c.UpdatedAt = at
	s.conversations[conversationID] = c
	return nil
}

func (s *InMemoryStore) Close(_ context.Context, conversationID id.ConversationID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	c.Status = models.StatusClosed
	c.UpdatedAt = at
	s.conversations[conversationID] = c
	return nil
}
