// Package handler exposes role and permission administration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm/internal/authz/middleware"
	"crm/internal/authz/models"
	"crm/internal/authz/service"
	id "crm/pkg/domain"
	"crm/pkg/platform/httputil"
	"crm/pkg/requestcontext"
)

// ManagePermission guards every route in this package.
const ManagePermission = "permissao:gerenciar"

type RBACService interface {
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	CreatePermission(ctx context.Context, name, category, description string) (*models.Permission, error)
	UpdatePermission(ctx context.Context, permissionID id.PermissionID, upd service.PermissionUpdate) (*models.Permission, error)
	DeletePermission(ctx context.Context, permissionID id.PermissionID) error
	ListRoles(ctx context.Context) ([]models.Role, error)
	CreateRole(ctx context.Context, name, description string) (*models.Role, error)
	UpdateRole(ctx context.Context, roleID id.RoleID, upd service.RoleUpdate) (*models.Role, error)
	DeleteRole(ctx context.Context, roleID id.RoleID) error
	GetRolePermissions(ctx context.Context, roleID id.RoleID) ([]models.Permission, error)
	AttachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error
	DetachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error
}

type PermissionReader interface {
	GetUserPermissions(ctx context.Context, identityID id.IdentityID) ([]string, error)
}

type Handler struct {
	rbac        RBACService
	permissions PermissionReader
	gates       *middleware.Gates
	logger      *slog.Logger
}

func New(rbac RBACService, permissions PermissionReader, gates *middleware.Gates, logger *slog.Logger) *Handler {
	return &Handler{
		rbac:        rbac,
		permissions: permissions,
		gates:       gates,
		logger:      logger,
	}
}

// Register mounts the admin routes under /api/admin.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.gates.RequirePermission(ManagePermission, nil))

		r.Get("/permissions", h.handleListPermissions)
		r.Post("/permissions", h.handleCreatePermission)
		r.Put("/permissions/{id}", h.handleUpdatePermission)
		r.Delete("/permissions/{id}", h.handleDeletePermission)

		r.Get("/roles", h.handleListRoles)
		r.Post("/roles", h.handleCreateRole)
		r.Put("/roles/{id}", h.handleUpdateRole)
		r.Delete("/roles/{id}", h.handleDeleteRole)
		r.Get("/roles/{id}/permissions", h.handleGetRolePermissions)

		r.Post("/role-permissions", h.handleAttachPermission)
		r.Delete("/role-permissions", h.handleDetachPermission)

		r.Get("/users/{id}/permissions", h.handleGetUserPermissions)
	})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	perms, err := h.rbac.ListPermissions(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list permissions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perms)
}

func (h *Handler) handleCreatePermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreatePermissionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	perm, err := h.rbac.CreatePermission(ctx, req.Name, req.Category, req.Description)
	if err != nil {
		h.fail(ctx, w, "failed to create permission", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, perm)
}

func (h *Handler) handleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	permissionID, err := id.ParsePermissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdatePermissionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	perm, err := h.rbac.UpdatePermission(ctx, permissionID, service.PermissionUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.fail(ctx, w, "failed to update permission", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perm)
}

func (h *Handler) handleDeletePermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	permissionID, err := id.ParsePermissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.rbac.DeletePermission(ctx, permissionID); err != nil {
		h.fail(ctx, w, "failed to delete permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roles, err := h.rbac.ListRoles(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list roles", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRoleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	role, err := h.rbac.CreateRole(ctx, req.Name, req.Description)
	if err != nil {
		h.fail(ctx, w, "failed to create role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roleID, err := id.ParseRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	role, err := h.rbac.UpdateRole(ctx, roleID, service.RoleUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.fail(ctx, w, "failed to update role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roleID, err := id.ParseRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.rbac.DeleteRole(ctx, roleID); err != nil {
		h.fail(ctx, w, "failed to delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetRolePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roleID, err := id.ParseRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	perms, err := h.rbac.GetRolePermissions(ctx, roleID)
	if err != nil {
		h.fail(ctx, w, "failed to list role permissions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perms)
}

func (h *Handler) handleAttachPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RolePermissionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.rbac.AttachPermission(ctx, id.RoleID(req.RoleID), id.PermissionID(req.PermissionID)); err != nil {
		h.fail(ctx, w, "failed to attach permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDetachPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RolePermissionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.rbac.DetachPermission(ctx, id.RoleID(req.RoleID), id.PermissionID(req.PermissionID)); err != nil {
		h.fail(ctx, w, "failed to detach permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetUserPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identityID, err := id.ParseIdentityID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	perms, err := h.permissions.GetUserPermissions(ctx, identityID)
	if err != nil {
		h.fail(ctx, w, "failed to load user permissions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"userId":      int64(identityID),
		"permissions": perms,
	})
}
