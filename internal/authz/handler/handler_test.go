package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"crm/internal/authz/middleware"
	"crm/internal/authz/models"
	"crm/internal/authz/service"
	"crm/internal/authz/store"
	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	auditpublisher "crm/pkg/platform/audit/publisher"
	auditmemory "crm/pkg/platform/audit/store/memory"
	"crm/pkg/testutil"
)

const (
	adminID id.IdentityID = 1
	agentID id.IdentityID = 2
)

type HandlerSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.InMemoryStore
	audit  *auditmemory.InMemoryStore
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	s.audit = auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.Require().NoError(s.store.SaveIdentity(s.ctx, &models.Identity{ID: adminID, Role: "admin", IsActive: true}))
	s.Require().NoError(s.store.SaveIdentity(s.ctx, &models.Identity{ID: agentID, Role: "atendente", IsActive: true}))

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithAuditPublisher(auditpublisher.NewPublisher(s.audit)),
	}
	evaluator, err := service.NewEvaluator(s.store, opts...)
	s.Require().NoError(err)
	rbac, err := service.NewRBACService(s.store, opts...)
	s.Require().NoError(err)

	r := chi.NewRouter()
	New(rbac, evaluator, middleware.New(evaluator, logger), logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) do(identityID id.IdentityID, req *http.Request) int {
	return testutil.DoRequest(s.router, testutil.WithIdentity(req, identityID)).Code
}

func (s *HandlerSuite) TestNonAdminIsForbidden() {
	rr := testutil.DoRequest(s.router, testutil.WithIdentity(testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/roles"), agentID))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionDenied), 1)
}

func (s *HandlerSuite) TestPermissionCRUD() {
	s.Run("create", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/permissions",
			map[string]string{"name": "conversas:atribuir", "category": "conversas"})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, adminID))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		perm := testutil.UnmarshalResponse[models.Permission](s.T(), rr)
		s.Equal("conversas", perm.Resource)
		s.Equal("atribuir", perm.Action)
	})

	s.Run("duplicate name is 409", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/permissions",
			map[string]string{"name": "conversas:atribuir"})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, adminID))
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})

	s.Run("malformed name is 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/permissions",
			map[string]string{"name": "no separator"})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, adminID))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("update", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/admin/permissions/1",
			map[string]any{"isActive": false})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, adminID))
		testutil.AssertStatusOK(s.T(), rr)
		perm := testutil.UnmarshalResponse[models.Permission](s.T(), rr)
		s.False(perm.IsActive)
	})

	s.Run("empty update is 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/admin/permissions/1", map[string]any{})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, adminID))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("delete then 404", func() {
		code := s.do(adminID, testutil.NewRequest(s.T(), http.MethodDelete, "/api/admin/permissions/1"))
		s.Equal(http.StatusNoContent, code)
		code = s.do(adminID, testutil.NewRequest(s.T(), http.MethodDelete, "/api/admin/permissions/1"))
		s.Equal(http.StatusNotFound, code)
	})

	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionCreated), 1)
	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionDeleted), 1)
}

func (s *HandlerSuite) TestRoleLinksAndUserPermissions() {
	role := &models.Role{Name: "Atendente", IsActive: true}
	s.Require().NoError(s.store.CreateRole(s.ctx, role))
	perm, err := models.NewPermission("roteamento:gerenciar", "", "")
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreatePermission(s.ctx, perm))
	s.Require().NoError(s.store.SaveIdentity(s.ctx, &models.Identity{ID: 3, Role: "atendente", RoleID: role.ID, IsActive: true}))

	body := map[string]int64{"roleId": int64(role.ID), "permissionId": int64(perm.ID)}
	code := s.do(adminID, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/role-permissions", body))
	s.Equal(http.StatusNoContent, code)

	rr := testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/roles/"+role.ID.String()+"/permissions"), adminID))
	testutil.AssertStatusOK(s.T(), rr)
	perms := testutil.UnmarshalResponse[[]models.Permission](s.T(), rr)
	s.Require().Len(*perms, 1)
	s.Equal("roteamento:gerenciar", (*perms)[0].Name)

	type userPermissions struct {
		UserID      int64    `json:"userId"`
		Permissions []string `json:"permissions"`
	}
	rr = testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/users/3/permissions"), adminID))
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal([]string{"roteamento:gerenciar"}, testutil.UnmarshalResponse[userPermissions](s.T(), rr).Permissions)

	rr = testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/users/1/permissions"), adminID))
	s.Equal([]string{service.AdminSentinel}, testutil.UnmarshalResponse[userPermissions](s.T(), rr).Permissions)

	rr = testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/users/99/permissions"), adminID))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)

	code = s.do(adminID, testutil.NewJSONRequest(s.T(), http.MethodDelete, "/api/admin/role-permissions", body))
	s.Equal(http.StatusNoContent, code)

	code = s.do(adminID, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/role-permissions", map[string]int64{"roleId": 1}))
	s.Equal(http.StatusBadRequest, code)
}

func (s *HandlerSuite) TestRoleCRUD() {
	rr := testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/roles", map[string]string{"name": "Supervisor"}), adminID))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	role := testutil.UnmarshalResponse[models.Role](s.T(), rr)

	rr = testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/admin/roles/"+role.ID.String(), map[string]string{"description": "lead"}), adminID))
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("lead", testutil.UnmarshalResponse[models.Role](s.T(), rr).Description)

	rr = testutil.DoRequest(s.router, testutil.WithIdentity(
		testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/roles"), adminID))
	testutil.AssertStatusOK(s.T(), rr)
	s.Len(*testutil.UnmarshalResponse[[]models.Role](s.T(), rr), 1)

	code := s.do(adminID, testutil.NewRequest(s.T(), http.MethodDelete, "/api/admin/roles/"+role.ID.String()))
	s.Equal(http.StatusNoContent, code)

	code = s.do(adminID, testutil.NewRequest(s.T(), http.MethodDelete, "/api/admin/roles/abc"))
	s.Equal(http.StatusBadRequest, code)
}
