package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"crm/internal/assignment/dedup"
	"crm/internal/assignment/models"
	"crm/internal/assignment/selector"
	"crm/internal/assignment/service"
	authzmw "crm/internal/authz/middleware"
	authzmodels "crm/internal/authz/models"
	authzservice "crm/internal/authz/service"
	authzstore "crm/internal/authz/store"
	convmodels "crm/internal/conversation/models"
	convstore "crm/internal/conversation/store"
	routingservice "crm/internal/routing/service"
	routingstore "crm/internal/routing/store"
	teammodels "crm/internal/team/models"
	teamstore "crm/internal/team/store"
	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	auditpublisher "crm/pkg/platform/audit/publisher"
	auditmemory "crm/pkg/platform/audit/store/memory"
	"crm/pkg/requestcontext"
	"crm/pkg/testutil"
)

const (
	secretariaAgent id.IdentityID = 1
	direitoAgent    id.IdentityID = 2
	administrador   id.IdentityID = 3
	observer        id.IdentityID = 4
	memberA         id.IdentityID = 10
)

type HandlerSuite struct {
	suite.Suite
	ctx           context.Context
	router        chi.Router
	audit         *auditmemory.InMemoryStore
	conversations *convstore.InMemoryStore
	now           time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.audit = auditmemory.NewInMemoryStore()
	publisher := auditpublisher.NewPublisher(s.audit)

	rbac := authzstore.NewInMemoryStore()
	role := &authzmodels.Role{Name: "Atendente", IsActive: true}
	s.Require().NoError(rbac.CreateRole(s.ctx, role))
	perm, err := authzmodels.NewPermission(AssignPermission, "conversas", "")
	s.Require().NoError(err)
	s.Require().NoError(rbac.CreatePermission(s.ctx, perm))
	s.Require().NoError(rbac.AttachPermission(s.ctx, role.ID, perm.ID))
	for _, ident := range []authzmodels.Identity{
		{ID: secretariaAgent, Role: "Atendente", RoleID: role.ID, TeamID: 7, IsActive: true},
		{ID: direitoAgent, Role: "Atendente", RoleID: role.ID, TeamID: 3, IsActive: true},
		{ID: administrador, Role: "Administrador", IsActive: true},
		{ID: observer, Role: "Observador", TeamID: 7, IsActive: true},
	} {
		s.Require().NoError(rbac.SaveIdentity(s.ctx, &ident))
	}
	evaluator, err := authzservice.NewEvaluator(rbac,
		authzservice.WithLogger(logger),
		authzservice.WithAuditPublisher(publisher),
	)
	s.Require().NoError(err)

	teams := teamstore.NewInMemoryStore()
	s.Require().NoError(teams.SaveTeam(s.ctx, &teammodels.Team{ID: 7, Name: "Secretaria", IsActive: true}))
	s.Require().NoError(teams.SaveTeam(s.ctx, &teammodels.Team{ID: 3, Name: "Direito", IsActive: true}))
	s.Require().NoError(teams.SaveMembership(s.ctx, &teammodels.Membership{TeamID: 7, UserID: memberA, IsActive: true}))

	s.conversations = convstore.NewInMemoryStore()
	for conv := id.ConversationID(40); conv <= 45; conv++ {
		s.Require().NoError(s.conversations.Save(s.ctx, &convmodels.Conversation{ID: conv, Status: convmodels.StatusOpen}))
	}

	rules, err := routingservice.New(routingstore.NewInMemoryStore(), teams, routingservice.WithLogger(logger))
	s.Require().NoError(err)
	_, err = rules.CreateRule(s.ctx, "matrícula", 7, true)
	s.Require().NoError(err)

	sel, err := selector.New(teams, selector.NewInMemoryCursors(), s.conversations, selector.WithLogger(logger))
	s.Require().NoError(err)
	svc, err := service.New(teams, s.conversations,
		dedup.NewGuard(dedup.NewInMemoryStore(), dedup.WithLogger(logger)),
		sel,
		service.WithLogger(logger),
		service.WithKeywordRouter(rules),
		service.WithAuditPublisher(publisher),
	)
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), s.now)))
		})
	})
	New(svc, authzmw.New(evaluator, logger), logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) post(identityID id.IdentityID, path string, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
	if !identityID.IsNil() {
		req = testutil.WithIdentity(req, identityID)
	}
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) TestAssignConversation() {
	s.Run("member of the team assigns", func() {
		resp := s.post(secretariaAgent, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 42})
		testutil.AssertStatusOK(s.T(), resp)
		res := testutil.UnmarshalResponse[models.Result](s.T(), resp)
		s.True(res.Success)
		s.Equal(id.TeamID(7), res.TeamID)
		s.Equal(memberA, res.UserID)
	})

	s.Run("webhook redelivery returns success false with 200", func() {
		s.now = s.now.Add(500 * time.Millisecond)
		resp := s.post(secretariaAgent, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 42})
		testutil.AssertStatusOK(s.T(), resp)
		res := testutil.UnmarshalResponse[models.Result](s.T(), resp)
		s.False(res.Success)
		s.Equal(id.TeamID(7), res.TeamID)
		s.Len(s.audit.ListByAction(s.ctx, audit.ActionTeamAssignment), 1)
	})

	s.Run("another team's agent is forbidden and audited", func() {
		resp := s.post(direitoAgent, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 43})
		testutil.AssertStatusAndError(s.T(), resp, http.StatusForbidden, "forbidden")
		denied := s.audit.ListByAction(s.ctx, audit.ActionPermissionDenied)
		s.Require().NotEmpty(denied)
		s.Equal(audit.ResultFailure, denied[len(denied)-1].Result)
	})

	s.Run("identity without the permission is forbidden", func() {
		resp := s.post(observer, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 43})
		testutil.AssertStatus(s.T(), resp, http.StatusForbidden)
	})

	s.Run("admin alias passes every gate", func() {
		resp := s.post(administrador, "/api/teams/3/assign-conversation", map[string]any{"conversationId": 43, "method": "manual"})
		testutil.AssertStatusOK(s.T(), resp)
	})

	s.Run("anonymous is unauthorized", func() {
		resp := s.post(0, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 44})
		testutil.AssertStatusAndError(s.T(), resp, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("validation", func() {
		resp := s.post(secretariaAgent, "/api/teams/7/assign-conversation", map[string]any{})
		testutil.AssertStatus(s.T(), resp, http.StatusBadRequest)

		resp = s.post(secretariaAgent, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 44, "method": "lottery"})
		testutil.AssertStatus(s.T(), resp, http.StatusBadRequest)

		resp = s.post(administrador, "/api/teams/abc/assign-conversation", map[string]any{"conversationId": 44})
		testutil.AssertStatus(s.T(), resp, http.StatusBadRequest)
	})

	s.Run("unknown conversation", func() {
		resp := s.post(secretariaAgent, "/api/teams/7/assign-conversation", map[string]any{"conversationId": 999})
		testutil.AssertStatus(s.T(), resp, http.StatusNotFound)
	})
}

func (s *HandlerSuite) TestAssignUser() {
	resp := s.post(secretariaAgent, "/api/teams/7/assign-user", map[string]any{"conversationId": 44, "userId": int64(memberA)})
	testutil.AssertStatusOK(s.T(), resp)
	res := testutil.UnmarshalResponse[models.Result](s.T(), resp)
	s.True(res.Success)
	s.Equal(memberA, res.UserID)

	resp = s.post(secretariaAgent, "/api/teams/7/assign-user", map[string]any{"conversationId": 44})
	testutil.AssertStatus(s.T(), resp, http.StatusBadRequest)

	resp = s.post(secretariaAgent, "/api/teams/7/assign-user", map[string]any{"conversationId": 44, "userId": 777})
	testutil.AssertStatus(s.T(), resp, http.StatusNotFound)
}

func (s *HandlerSuite) TestRouteAndRelease() {
	resp := s.post(secretariaAgent, "/api/conversations/45/route", map[string]any{"message": "Quero saber sobre MATRÍCULA"})
	testutil.AssertStatusOK(s.T(), resp)
	res := testutil.UnmarshalResponse[models.RouteResult](s.T(), resp)
	s.True(res.Matched)
	s.Equal(id.TeamID(7), res.TeamID)
	s.Require().NotNil(res.Result)
	s.Equal(models.MethodKeyword, res.Result.Method)

	resp = s.post(secretariaAgent, "/api/conversations/45/route", map[string]any{"message": ""})
	testutil.AssertStatus(s.T(), resp, http.StatusBadRequest)

	resp = s.post(secretariaAgent, "/api/conversations/45/release", nil)
	testutil.AssertStatus(s.T(), resp, http.StatusNoContent)
	conv, err := s.conversations.Find(s.ctx, 45)
	s.Require().NoError(err)
	s.Equal(convmodels.StatusClosed, conv.Status)

	resp = s.post(observer, "/api/conversations/45/release", nil)
	testutil.AssertStatus(s.T(), resp, http.StatusForbidden)

	resp = s.post(secretariaAgent, "/api/conversations/x/release", nil)
	testutil.AssertStatus(s.T(), resp, http.StatusBadRequest)
}
