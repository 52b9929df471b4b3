package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crm/internal/routing/models"
	id "crm/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	rules  map[id.KeywordRuleID]models.KeywordRule
	nextID id.KeywordRuleID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rules: make(map[id.KeywordRuleID]models.KeywordRule)}
}

func (s *InMemoryStore) sorted(activeOnly bool) []models.KeywordRule {
	out := make([]models.KeywordRule, 0, len(s.rules))
	for _, r := range s.rules {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryStore) ListRules(_ context.Context) ([]models.KeywordRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(false), nil
}

func (s *InMemoryStore) ListActiveRules(_ context.Context) ([]models.KeywordRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(true), nil
}

func (s *InMemoryStore) FindRule(_ context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("keyword rule %s: %w", ruleID, ErrNotFound)
	}
	return &r, nil
}

func (s *InMemoryStore) FindByKeyword(_ context.Context, keyword string) (*models.KeywordRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := models.NormalizeKeyword(keyword)
	for _, r := range s.rules {
		if r.Keyword == k {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("keyword %q: %w", k, ErrNotFound)
}

func (s *InMemoryStore) keywordTaken(keyword string, except id.KeywordRuleID) bool {
	for _, r := range s.rules {
		if r.ID != except && r.Keyword == keyword {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) CreateRule(_ context.Context, r *models.KeywordRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keywordTaken(r.Keyword, 0) {
		return fmt.Errorf("keyword %q: %w", r.Keyword, ErrConflict)
	}
	s.nextID++
	r.ID = s.nextID
	s.rules[r.ID] = *r
	return nil
}

func (s *InMemoryStore) UpdateRule(_ context.Context, r *models.KeywordRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID]; !ok {
		return fmt.Errorf("keyword rule %s: %w", r.ID, ErrNotFound)
	}
	if s.keywordTaken(r.Keyword, r.ID) {
		return fmt.Errorf("keyword %q: %w", r.Keyword, ErrConflict)
	}
	s.rules[r.ID] = *r
	return nil
}

func (s *InMemoryStore) DeleteRule(_ context.Context, ruleID id.KeywordRuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[ruleID]; !ok {
		return fmt.Errorf("keyword rule %s: %w", ruleID, ErrNotFound)
	}
	delete(s.rules, ruleID)
	return nil
}
