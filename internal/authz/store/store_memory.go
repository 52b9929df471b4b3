package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crm/internal/authz/models"
	id "crm/pkg/domain"
)

type linkKey struct {
	role       id.RoleID
	permission id.PermissionID
}

// InMemoryStore is a process-local RBAC store used in development and tests.
type InMemoryStore struct {
	mu          sync.RWMutex
	identities  map[id.IdentityID]models.Identity
	roles       map[id.RoleID]models.Role
	permissions map[id.PermissionID]models.Permission
	links       map[linkKey]bool
	nextRole    id.RoleID
	nextPerm    id.PermissionID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		identities:  make(map[id.IdentityID]models.Identity),
		roles:       make(map[id.RoleID]models.Role),
		permissions: make(map[id.PermissionID]models.Permission),
		links:       make(map[linkKey]bool),
	}
}

// SaveIdentity inserts or replaces an identity. Identities are provisioned
// outside the core; this exists for seeding.
func (s *InMemoryStore) SaveIdentity(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *identity
	cp.TeamIDs = append([]id.TeamID(nil), identity.TeamIDs...)
	s.identities[identity.ID] = cp
	return nil
}

func (s *InMemoryStore) FindIdentity(_ context.Context, identityID id.IdentityID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[identityID]
	if !ok {
		return nil, fmt.Errorf("identity %s: %w", identityID, ErrNotFound)
	}
	identity.TeamIDs = append([]id.TeamID(nil), identity.TeamIDs...)
	return &identity, nil
}

func (s *InMemoryStore) HasActivePermission(_ context.Context, roleID id.RoleID, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, active := range s.links {
		if key.role != roleID || !active {
			continue
		}
		if p, ok := s.permissions[key.permission]; ok && p.IsActive && p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListActivePermissionNames(_ context.Context, roleID id.RoleID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := []string{}
	for key, active := range s.links {
		if key.role != roleID || !active {
			continue
		}
		if p, ok := s.permissions[key.permission]; ok && p.IsActive {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *InMemoryStore) ListPermissions(_ context.Context) ([]models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) FindPermission(_ context.Context, permissionID id.PermissionID) (*models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permissionID]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permissionID, ErrNotFound)
	}
	return &p, nil
}

func (s *InMemoryStore) permissionNameTaken(name string, except id.PermissionID) bool {
	for _, p := range s.permissions {
		if p.Name == name && p.ID != except {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) CreatePermission(_ context.Context, p *models.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permissionNameTaken(p.Name, 0) {
		return fmt.Errorf("permission %q: %w", p.Name, ErrConflict)
	}
	s.nextPerm++
	p.ID = s.nextPerm
	s.permissions[p.ID] = *p
	return nil
}

func (s *InMemoryStore) UpdatePermission(_ context.Context, p *models.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.ID]; !ok {
		return fmt.Errorf("permission %s: %w", p.ID, ErrNotFound)
	}
	if s.permissionNameTaken(p.Name, p.ID) {
		return fmt.Errorf("permission %q: %w", p.Name, ErrConflict)
	}
	s.permissions[p.ID] = *p
	return nil
}

func (s *InMemoryStore) DeletePermission(_ context.Context, permissionID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[permissionID]; !ok {
		return fmt.Errorf("permission %s: %w", permissionID, ErrNotFound)
	}
	delete(s.permissions, permissionID)
	for key := range s.links {
		if key.permission == permissionID {
			delete(s.links, key)
		}
	}
	return nil
}

func (s *InMemoryStore) ListRoles(_ context.Context) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) FindRole(_ context.Context, roleID id.RoleID) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, ErrNotFound)
	}
	return &r, nil
}

func (s *InMemoryStore) roleNameTaken(name string, except id.RoleID) bool {
	for _, r := range s.roles {
		if r.Name == name && r.ID != except {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) CreateRole(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roleNameTaken(r.Name, 0) {
		return fmt.Errorf("role %q: %w", r.Name, ErrConflict)
	}
	s.nextRole++
	r.ID = s.nextRole
	stored := *r
	stored.Permissions = nil
	s.roles[r.ID] = stored
	return nil
}

func (s *InMemoryStore) UpdateRole(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, ErrNotFound)
	}
	if s.roleNameTaken(r.Name, r.ID) {
		return fmt.Errorf("role %q: %w", r.Name, ErrConflict)
	}
	stored := *r
	stored.Permissions = nil
	s.roles[r.ID] = stored
	return nil
}

func (s *InMemoryStore) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID]; !ok {
		return fmt.Errorf("role %s: %w", roleID, ErrNotFound)
	}
	delete(s.roles, roleID)
	for key := range s.links {
		if key.role == roleID {
			delete(s.links, key)
		}
	}
	return nil
}

// ListRolePermissions returns the permissions actively linked to a role.
func (s *InMemoryStore) ListRolePermissions(_ context.Context, roleID id.RoleID) ([]models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.roles[roleID]; !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, ErrNotFound)
	}
	out := []models.Permission{}
	for key, active := range s.links {
		if key.role == roleID && active {
			if p, ok := s.permissions[key.permission]; ok {
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) AttachPermission(_ context.Context, roleID id.RoleID, permissionID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID]; !ok {
		return fmt.Errorf("role %s: %w", roleID, ErrNotFound)
	}
	if _, ok := s.permissions[permissionID]; !ok {
		return fmt.Errorf("permission %s: %w", permissionID, ErrNotFound)
	}
	s.links[linkKey{role: roleID, permission: permissionID}] = true
	return nil
}

func (s *InMemoryStore) DetachPermission(_ context.Context, roleID id.RoleID, permissionID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := linkKey{role: roleID, permission: permissionID}
	if _, ok := s.links[key]; !ok {
		return fmt.Errorf("role permission %s/%s: %w", roleID, permissionID, ErrNotFound)
	}
	delete(s.links, key)
	return nil
}

// SetLinkActive flips the active flag on an existing link without removing it.
func (s *InMemoryStore) SetLinkActive(_ context.Context, roleID id.RoleID, permissionID id.PermissionID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := linkKey{role: roleID, permission: permissionID}
	if _, ok := s.links[key]; !ok {
		return fmt.Errorf("role permission %s/%s: %w", roleID, permissionID, ErrNotFound)
	}
	s.links[key] = active
	return nil
}
