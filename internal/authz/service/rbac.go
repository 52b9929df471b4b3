package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"crm/internal/authz/models"
	"crm/internal/authz/store"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	audit "crm/pkg/platform/audit"
	"crm/pkg/requestcontext"
)

type RBACStore interface {
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	FindPermission(ctx context.Context, permissionID id.PermissionID) (*models.Permission, error)
	CreatePermission(ctx context.Context, p *models.Permission) error
	UpdatePermission(ctx context.Context, p *models.Permission) error
	DeletePermission(ctx context.Context, permissionID id.PermissionID) error

	ListRoles(ctx context.Context) ([]models.Role, error)
	FindRole(ctx context.Context, roleID id.RoleID) (*models.Role, error)
	CreateRole(ctx context.Context, r *models.Role) error
	UpdateRole(ctx context.Context, r *models.Role) error
	DeleteRole(ctx context.Context, roleID id.RoleID) error

	ListRolePermissions(ctx context.Context, roleID id.RoleID) ([]models.Permission, error)
	AttachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error
	DetachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error
}

// PermissionUpdate carries the optional fields of a permission edit.
type PermissionUpdate struct {
	Name        *string
	Category    *string
	Description *string
	IsActive    *bool
}

type RoleUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// RBACService manages roles, permissions and their links. Every successful
// mutation writes a success audit entry attributed to the caller.
type RBACService struct {
	store          RBACStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

func NewRBACService(rbac RBACStore, opts ...Option) (*RBACService, error) {
	if rbac == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "rbac store is required")
	}
	o := buildOptions(opts)
	return &RBACService{
		store:          rbac,
		logger:         o.logger,
		auditPublisher: o.auditPublisher,
	}, nil
}

func translate(err error, notFound, conflict, internal string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, store.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, conflict)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internal)
	}
}

func (s *RBACService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	perms, err := s.store.ListPermissions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list permissions")
	}
	return perms, nil
}

func (s *RBACService) CreatePermission(ctx context.Context, name, category, description string) (*models.Permission, error) {
	p, err := models.NewPermission(name, category, description)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePermission(ctx, p); err != nil {
		return nil, translate(err, "permission not found", "permission name must be unique", "failed to create permission")
	}
	s.logAudit(ctx, audit.ActionPermissionCreated, "permission", p.ID.String(), map[string]any{"name": p.Name})
	return p, nil
}

func (s *RBACService) UpdatePermission(ctx context.Context, permissionID id.PermissionID, upd PermissionUpdate) (*models.Permission, error) {
	current, err := s.store.FindPermission(ctx, permissionID)
	if err != nil {
		return nil, translate(err, "permission not found", "", "failed to load permission")
	}

	if upd.Name != nil {
		renamed, err := models.NewPermission(*upd.Name, current.Category, current.Description)
		if err != nil {
			return nil, err
		}
		current.Name, current.Resource, current.Action = renamed.Name, renamed.Resource, renamed.Action
	}
	if upd.Category != nil {
		current.Category = strings.TrimSpace(*upd.Category)
	}
	if upd.Description != nil {
		current.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.IsActive != nil {
		current.IsActive = *upd.IsActive
	}

	if err := s.store.UpdatePermission(ctx, current); err != nil {
		return nil, translate(err, "permission not found", "permission name must be unique", "failed to update permission")
	}
	s.logAudit(ctx, audit.ActionPermissionUpdated, "permission", current.ID.String(), map[string]any{"name": current.Name})
	return current, nil
}

func (s *RBACService) DeletePermission(ctx context.Context, permissionID id.PermissionID) error {
	if err := s.store.DeletePermission(ctx, permissionID); err != nil {
		return translate(err, "permission not found", "", "failed to delete permission")
	}
	s.logAudit(ctx, audit.ActionPermissionDeleted, "permission", permissionID.String(), nil)
	return nil
}

func (s *RBACService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list roles")
	}
	return roles, nil
}

func (s *RBACService) CreateRole(ctx context.Context, name, description string) (*models.Role, error) {
	r, err := models.NewRole(name, description)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateRole(ctx, r); err != nil {
		return nil, translate(err, "role not found", "role name must be unique", "failed to create role")
	}
	s.logAudit(ctx, audit.ActionRoleCreated, "role", r.ID.String(), map[string]any{"name": r.Name})
	return r, nil
}

func (s *RBACService) UpdateRole(ctx context.Context, roleID id.RoleID, upd RoleUpdate) (*models.Role, error) {
	current, err := s.store.FindRole(ctx, roleID)
	if err != nil {
		return nil, translate(err, "role not found", "", "failed to load role")
	}
	if upd.Name != nil {
		renamed, err := models.NewRole(*upd.Name, current.Description)
		if err != nil {
			return nil, err
		}
		current.Name = renamed.Name
	}
	if upd.Description != nil {
		current.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.IsActive != nil {
		current.IsActive = *upd.IsActive
	}
	if err := s.store.UpdateRole(ctx, current); err != nil {
		return nil, translate(err, "role not found", "role name must be unique", "failed to update role")
	}
	s.logAudit(ctx, audit.ActionRoleUpdated, "role", current.ID.String(), map[string]any{"name": current.Name})
	return current, nil
}

func (s *RBACService) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	if err := s.store.DeleteRole(ctx, roleID); err != nil {
		return translate(err, "role not found", "", "failed to delete role")
	}
	s.logAudit(ctx, audit.ActionRoleDeleted, "role", roleID.String(), nil)
	return nil
}

func (s *RBACService) GetRolePermissions(ctx context.Context, roleID id.RoleID) ([]models.Permission, error) {
	perms, err := s.store.ListRolePermissions(ctx, roleID)
	if err != nil {
		return nil, translate(err, "role not found", "", "failed to list role permissions")
	}
	return perms, nil
}

func (s *RBACService) AttachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error {
	if err := s.store.AttachPermission(ctx, roleID, permissionID); err != nil {
		return translate(err, "role or permission not found", "", "failed to attach permission")
	}
	s.logAudit(ctx, audit.ActionPermissionAttached, "role", roleID.String(), map[string]any{"permission_id": int64(permissionID)})
	return nil
}

func (s *RBACService) DetachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error {
	if err := s.store.DetachPermission(ctx, roleID, permissionID); err != nil {
		return translate(err, "role permission not found", "", "failed to detach permission")
	}
	s.logAudit(ctx, audit.ActionPermissionDetached, "role", roleID.String(), map[string]any{"permission_id": int64(permissionID)})
	return nil
}

func (s *RBACService) logAudit(ctx context.Context, action, resource, resourceID string, details map[string]any) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, action,
		"event", action,
		"log_type", "audit",
		"resource_id", resourceID,
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Entry{
		IdentityID: requestcontext.IdentityID(ctx),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		Result:     audit.ResultSuccess,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record audit entry",
			"action", action,
			"error", err,
			"request_id", requestID,
		)
	}
}
