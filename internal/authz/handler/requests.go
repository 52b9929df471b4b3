package handler

import (
	"strings"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
)

type CreatePermissionRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (r *CreatePermissionRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}
	return nil
}

// UpdatePermissionRequest only changes the fields present in the body.
type UpdatePermissionRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (r *UpdatePermissionRequest) Validate() error {
	if r.Name == nil && r.Category == nil && r.Description == nil && r.IsActive == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	return nil
}

type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CreateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (r *UpdateRoleRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.IsActive == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	return nil
}

// RolePermissionRequest links or unlinks a permission and a role.
type RolePermissionRequest struct {
	RoleID       int64 `json:"roleId"`
	PermissionID int64 `json:"permissionId"`
}

func (r *RolePermissionRequest) Validate() error {
	if id.RoleID(r.RoleID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "roleId is required")
	}
	if id.PermissionID(r.PermissionID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "permissionId is required")
	}
	return nil
}
