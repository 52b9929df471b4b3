package models

import (
	"regexp"
	"strings"

	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
)

// Identity is an authenticated system user as the core sees it. Role is
// free text and may carry locale variants of "admin".
type Identity struct {
	ID       id.IdentityID `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	RoleID   id.RoleID     `json:"roleId,omitempty"`
	DataKey  string        `json:"dataKey,omitempty"`
	TeamID   id.TeamID     `json:"teamId,omitempty"`
	TeamIDs  []id.TeamID   `json:"teamIds,omitempty"`
	IsActive bool          `json:"isActive"`
}

type Role struct {
	ID          id.RoleID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	IsActive    bool         `json:"isActive"`
	Permissions []Permission `json:"permissions,omitempty"`
}

type Permission struct {
	ID          id.PermissionID `json:"id"`
	Name        string          `json:"name"`
	Resource    string          `json:"resource"`
	Action      string          `json:"action"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
}

type RolePermission struct {
	RoleID       id.RoleID       `json:"roleId"`
	PermissionID id.PermissionID `json:"permissionId"`
	IsActive     bool            `json:"isActive"`
}

// AccessContext narrows a permission check to a team and/or a data partition.
type AccessContext struct {
	TeamID  id.TeamID
	DataKey string
}

var permissionNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.\-]+:[\p{L}\p{N}_.\-]+$`)

// NewPermission validates the resource:action naming convention and derives
// Resource and Action from the name.
func NewPermission(name, category, description string) (*Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "permission name is required")
	}
	if !permissionNamePattern.MatchString(name) {
		return nil, dErrors.New(dErrors.CodeValidation, "permission name must follow resource:action")
	}
	resource, action, _ := strings.Cut(name, ":")
	return &Permission{
		Name:        name,
		Resource:    resource,
		Action:      action,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}, nil
}

func NewRole(name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "role name is required")
	}
	if len(name) > 100 {
		return nil, dErrors.New(dErrors.CodeValidation, "role name must be 100 characters or less")
	}
	return &Role{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}, nil
}
