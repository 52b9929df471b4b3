package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"crm/internal/authz/models"
	"crm/internal/authz/service"
	"crm/internal/authz/store"
	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	auditpublisher "crm/pkg/platform/audit/publisher"
	auditmemory "crm/pkg/platform/audit/store/memory"
	"crm/pkg/testutil"
)

type GatesSuite struct {
	suite.Suite
	ctx    context.Context
	audit  *auditmemory.InMemoryStore
	router chi.Router
}

func TestGatesSuite(t *testing.T) {
	suite.Run(t, new(GatesSuite))
}

func (s *GatesSuite) SetupTest() {
	s.ctx = context.Background()
	rbac := store.NewInMemoryStore()

	role := &models.Role{Name: "Atendente", IsActive: true}
	s.Require().NoError(rbac.CreateRole(s.ctx, role))
	perm, err := models.NewPermission("conversas:atribuir", "", "")
	s.Require().NoError(err)
	s.Require().NoError(rbac.CreatePermission(s.ctx, perm))
	s.Require().NoError(rbac.AttachPermission(s.ctx, role.ID, perm.ID))

	s.Require().NoError(rbac.SaveIdentity(s.ctx, &models.Identity{ID: 1, Role: "Administrador", IsActive: true}))
	s.Require().NoError(rbac.SaveIdentity(s.ctx, &models.Identity{ID: 2, Role: "atendente", RoleID: role.ID, TeamID: 7, IsActive: true}))

	s.audit = auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluator, err := service.NewEvaluator(rbac,
		service.WithLogger(logger),
		service.WithAuditPublisher(auditpublisher.NewPublisher(s.audit)),
	)
	s.Require().NoError(err)

	gates := New(evaluator, logger)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r := chi.NewRouter()
	r.With(gates.RequirePermission("conversas:atribuir", TeamFromURLParam("teamId"))).Post("/teams/{teamId}/assign", ok)
	r.With(gates.RequirePermission("permissao:gerenciar", nil)).Get("/admin", ok)
	r.With(gates.RequireAnyPermission("permissao:gerenciar", "conversas:atribuir")).Get("/any", ok)
	r.With(gates.RequireAdmin()).Get("/admin-only", ok)
	r.With(gates.RequireTeamAccess("teamId")).Get("/teams/{teamId}", ok)
	s.router = r
}

func (s *GatesSuite) do(method, path string, identityID id.IdentityID) int {
	req := testutil.NewRequest(s.T(), method, path)
	if !identityID.IsNil() {
		req = testutil.WithIdentity(req, identityID)
	}
	return testutil.DoRequest(s.router, req).Code
}

func (s *GatesSuite) TestMissingIdentityIs401WithoutAudit() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/admin", 0))
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/admin-only", 0))
	recent, err := s.audit.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(recent)
}

func (s *GatesSuite) TestRequirePermission() {
	s.Run("granted with matching team", func() {
		s.Equal(http.StatusOK, s.do(http.MethodPost, "/teams/7/assign", 2))
	})

	s.Run("team mismatch is 403 with failure audit", func() {
		s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/teams/8/assign", 2))
		denied := s.audit.ListByAction(s.ctx, audit.ActionPermissionDenied)
		s.Require().Len(denied, 1)
		s.Equal(audit.ResultFailure, denied[0].Result)
		s.Equal(id.IdentityID(2), denied[0].IdentityID)
		s.Equal("conversas:atribuir", denied[0].Details["permission"])
	})

	s.Run("malformed team id is 400", func() {
		s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/teams/abc/assign", 2))
	})

	s.Run("admin bypass", func() {
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/admin", 1))
		s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/admin", 2))
	})
}

func (s *GatesSuite) TestRequireAnyPermission() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/any", 2))
}

func (s *GatesSuite) TestRequireAdmin() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/admin-only", 1))
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/admin-only", 2))
}

func (s *GatesSuite) TestRequireTeamAccess() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/teams/7", 2))
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/teams/9", 2))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/teams/9", 1))
}
