package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"crm/internal/authz/store"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	audit "crm/pkg/platform/audit"
	auditmemory "crm/pkg/platform/audit/store/memory"
	"crm/pkg/requestcontext"
)

type syncPublisher struct {
	store *auditmemory.InMemoryStore
}

func (p syncPublisher) Emit(ctx context.Context, e audit.Entry) error {
	return p.store.Append(ctx, e)
}

type RBACServiceSuite struct {
	suite.Suite
	ctx     context.Context
	audit   *auditmemory.InMemoryStore
	store   *store.InMemoryStore
	service *RBACService
}

func TestRBACServiceSuite(t *testing.T) {
	suite.Run(t, new(RBACServiceSuite))
}

func (s *RBACServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithIdentityID(context.Background(), 1)
	s.audit = auditmemory.NewInMemoryStore()
	s.store = store.NewInMemoryStore()
	svc, err := NewRBACService(s.store, WithAuditPublisher(syncPublisher{store: s.audit}))
	s.Require().NoError(err)
	s.service = svc
}

func (s *RBACServiceSuite) TestPermissionLifecycle() {
	p, err := s.service.CreatePermission(s.ctx, "teams:manage", "teams", "manage teams")
	s.Require().NoError(err)
	s.Equal("teams", p.Resource)

	s.Run("duplicate name conflicts", func() {
		_, err := s.service.CreatePermission(s.ctx, "teams:manage", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("invalid name is a validation error", func() {
		_, err := s.service.CreatePermission(s.ctx, "not a permission", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("update renames and recomputes resource", func() {
		name := "equipes:gerenciar"
		inactive := false
		updated, err := s.service.UpdatePermission(s.ctx, p.ID, PermissionUpdate{Name: &name, IsActive: &inactive})
		s.Require().NoError(err)
		s.Equal("equipes", updated.Resource)
		s.Equal("gerenciar", updated.Action)
		s.False(updated.IsActive)
	})

	s.Run("delete unknown is not found", func() {
		err := s.service.DeletePermission(s.ctx, 999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Require().NoError(s.service.DeletePermission(s.ctx, p.ID))

	entries := s.audit.ListByAction(s.ctx, audit.ActionPermissionCreated)
	s.Require().Len(entries, 1)
	s.Equal(id.IdentityID(1), entries[0].IdentityID)
	s.Equal(audit.ResultSuccess, entries[0].Result)
	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionUpdated), 1)
	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionDeleted), 1)
}

func (s *RBACServiceSuite) TestRolePermissionLinks() {
	role, err := s.service.CreateRole(s.ctx, "Supervisor", "")
	s.Require().NoError(err)
	perm, err := s.service.CreatePermission(s.ctx, "conversas:atribuir", "", "")
	s.Require().NoError(err)

	s.Require().NoError(s.service.AttachPermission(s.ctx, role.ID, perm.ID))
	perms, err := s.service.GetRolePermissions(s.ctx, role.ID)
	s.Require().NoError(err)
	s.Require().Len(perms, 1)
	s.Equal("conversas:atribuir", perms[0].Name)

	s.Run("attach to unknown role is not found", func() {
		err := s.service.AttachPermission(s.ctx, 999, perm.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Require().NoError(s.service.DetachPermission(s.ctx, role.ID, perm.ID))
	perms, err = s.service.GetRolePermissions(s.ctx, role.ID)
	s.Require().NoError(err)
	s.Empty(perms)

	s.Run("detach twice is not found", func() {
		err := s.service.DetachPermission(s.ctx, role.ID, perm.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionAttached), 1)
	s.Len(s.audit.ListByAction(s.ctx, audit.ActionPermissionDetached), 1)
}

func (s *RBACServiceSuite) TestRoleUpdateConflict() {
	_, err := s.service.CreateRole(s.ctx, "A", "")
	s.Require().NoError(err)
	b, err := s.service.CreateRole(s.ctx, "B", "")
	s.Require().NoError(err)

	name := "A"
	_, err = s.service.UpdateRole(s.ctx, b.ID, RoleUpdate{Name: &name})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
