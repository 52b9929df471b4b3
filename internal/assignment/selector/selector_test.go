package selector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"crm/internal/assignment/models"
	convmodels "crm/internal/conversation/models"
	convstore "crm/internal/conversation/store"
	teammodels "crm/internal/team/models"
	teamstore "crm/internal/team/store"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/requestcontext"
)

type brokenCursors struct{}

func (brokenCursors) Next(context.Context, id.TeamID) (uint64, error) {
	return 0, errors.New("redis: connection refused")
}

type SelectorSuite struct {
	suite.Suite
	ctx           context.Context
	teams         *teamstore.InMemoryStore
	conversations *convstore.InMemoryStore
	selector      *Selector
}

func TestSelectorSuite(t *testing.T) {
	suite.Run(t, new(SelectorSuite))
}

func (s *SelectorSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	s.teams = teamstore.NewInMemoryStore()
	s.conversations = convstore.NewInMemoryStore()
	s.Require().NoError(s.teams.SaveTeam(s.ctx, &teammodels.Team{ID: 7, Name: "Secretaria", IsActive: true}))
	for conv := id.ConversationID(1); conv <= 12; conv++ {
		s.Require().NoError(s.conversations.Save(s.ctx, &convmodels.Conversation{ID: conv, Status: convmodels.StatusOpen}))
	}
	s.selector = s.newSelector(NewInMemoryCursors())
}

func (s *SelectorSuite) newSelector(cursors CursorStore) *Selector {
	sel, err := New(s.teams, cursors, s.conversations, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	return sel
}

func (s *SelectorSuite) addMember(userID id.IdentityID, active bool) {
	s.Require().NoError(s.teams.SaveMembership(s.ctx, &teammodels.Membership{TeamID: 7, UserID: userID, IsActive: active}))
}

func (s *SelectorSuite) TestRotatesAcrossActiveMembers() {
	s.addMember(30, true)
	s.addMember(10, true)
	s.addMember(20, true)
	s.addMember(40, false)

	counts := map[id.IdentityID]int{}
	var order []id.IdentityID
	for conv := id.ConversationID(1); conv <= 9; conv++ {
		sel, err := s.selector.AssignUserToConversation(s.ctx, conv, 7)
		s.Require().NoError(err)
		s.Require().True(sel.Success)
		counts[sel.UserID]++
		order = append(order, sel.UserID)
	}

	s.Equal([]id.IdentityID{10, 20, 30}, order[:3])
	s.Equal(map[id.IdentityID]int{10: 3, 20: 3, 30: 3}, counts)
}

func (s *SelectorSuite) TestPersistsRoundRobinAssignment() {
	s.addMember(10, true)

	sel, err := s.selector.AssignUserToConversation(s.ctx, 1, 7)
	s.Require().NoError(err)
	s.Require().True(sel.Success)

	conv, err := s.conversations.Find(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(id.IdentityID(10), conv.AssignedUserID)
	s.Equal(string(models.MethodRoundRobin), conv.AssignmentMethod)
	s.Require().NotNil(conv.UserAssignedAt)
}

func (s *SelectorSuite) TestNoActiveMembers() {
	s.addMember(40, false)

	sel, err := s.selector.AssignUserToConversation(s.ctx, 1, 7)
	s.Require().NoError(err)
	s.False(sel.Success)

	conv, err := s.conversations.Find(s.ctx, 1)
	s.Require().NoError(err)
	s.Zero(conv.AssignedUserID)
}

func (s *SelectorSuite) TestCursorFailureIsNotAnError() {
	s.addMember(10, true)

	sel, err := s.newSelector(brokenCursors{}).AssignUserToConversation(s.ctx, 1, 7)
	s.Require().NoError(err)
	s.False(sel.Success)
}

func (s *SelectorSuite) TestPersistFailureIsInternal() {
	s.addMember(10, true)

	_, err := s.selector.AssignUserToConversation(s.ctx, 999, 7)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *SelectorSuite) TestRequiredDependencies() {
	_, err := New(nil, NewInMemoryCursors(), s.conversations)
	s.Error(err)
	_, err = New(s.teams, nil, s.conversations)
	s.Error(err)
	_, err = New(s.teams, NewInMemoryCursors(), nil)
	s.Error(err)
}

func TestInMemoryCursorsArePerTeam(t *testing.T) {
	c := NewInMemoryCursors()
	ctx := context.Background()
	for want := uint64(0); want < 3; want++ {
		got, err := c.Next(ctx, 7)
		if err != nil || got != want {
			t.Fatalf("team 7: got %d, %v; want %d", got, err, want)
		}
	}
	if got, _ := c.Next(ctx, 8); got != 0 {
		t.Fatalf("team 8 starts at %d", got)
	}
}
