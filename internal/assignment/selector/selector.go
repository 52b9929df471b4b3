// Package selector spreads a team's conversations across its active members
// in rotation.
package selector

import (
	"context"
	"log/slog"
	"time"

	"crm/internal/assignment/metrics"
	"crm/internal/assignment/models"
	teammodels "crm/internal/team/models"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/requestcontext"
)

type MemberLister interface {
	ListActiveMembers(ctx context.Context, teamID id.TeamID) ([]teammodels.Membership, error)
}

type UserAssigner interface {
	AssignUser(ctx context.Context, conversationID id.ConversationID, userID id.IdentityID, method string, at time.Time) error
}

type Selector struct {
	members       MemberLister
	cursors       CursorStore
	conversations UserAssigner
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*Selector)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) {
		s.metrics = m
	}
}

func New(members MemberLister, cursors CursorStore, conversations UserAssigner, opts ...Option) (*Selector, error) {
	if members == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "team member store is required")
	}
	if cursors == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "cursor store is required")
	}
	if conversations == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "conversation store is required")
	}
	s := &Selector{
		members:       members,
		cursors:       cursors,
		conversations: conversations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AssignUserToConversation picks the next active member of teamID and
// assigns conversationID to them. Success is false when the team has no
// active members or its cursor cannot be advanced; the caller may then
// fall back to another policy. An error means the pick was made but could
// not be persisted.
func (s *Selector) AssignUserToConversation(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID) (models.Selection, error) {
	members, err := s.members.ListActiveMembers(ctx, teamID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list team members for rotation",
			"team_id", teamID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncSelection(string(models.MethodRoundRobin), false)
		return models.Selection{}, nil
	}
	if len(members) == 0 {
		s.metrics.IncSelection(string(models.MethodRoundRobin), false)
		return models.Selection{}, nil
	}

	cursor, err := s.cursors.Next(ctx, teamID)
	if err != nil {
		s.logger.WarnContext(ctx, "rotation cursor unavailable",
			"team_id", teamID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncSelection(string(models.MethodRoundRobin), false)
		return models.Selection{}, nil
	}

	chosen := members[cursor%uint64(len(members))].UserID
	err = s.conversations.AssignUser(ctx, conversationID, chosen, string(models.MethodRoundRobin), requestcontext.Now(ctx))
	if err != nil {
		return models.Selection{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign user")
	}
	s.metrics.IncSelection(string(models.MethodRoundRobin), true)
	return models.Selection{Success: true, UserID: chosen}, nil
}
