package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"crm/internal/authz/models"
	"crm/internal/platform/postgres"
	id "crm/pkg/domain"
)

// PostgresStore reads identities from system_users and manages the RBAC tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindIdentity(ctx context.Context, identityID id.IdentityID) (*models.Identity, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, COALESCE(u.role_id, 0), COALESCE(u.data_key, ''),
		       COALESCE(u.team_id, 0), u.is_active,
		       ARRAY(SELECT tm.team_id FROM team_members tm WHERE tm.user_id = u.id AND tm.is_active ORDER BY tm.team_id)
		FROM system_users u
		WHERE u.id = $1
	`
	var (
		identity models.Identity
		roleID   int64
		teamID   int64
		teamIDs  []int64
	)
	err := s.db.QueryRowContext(ctx, query, int64(identityID)).Scan(
		&identity.ID, &identity.Name, &identity.Email, &identity.Role, &roleID,
		&identity.DataKey, &teamID, &identity.IsActive, pq.Array(&teamIDs),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("identity %s: %w", identityID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	identity.RoleID = id.RoleID(roleID)
	identity.TeamID = id.TeamID(teamID)
	for _, t := range teamIDs {
		identity.TeamIDs = append(identity.TeamIDs, id.TeamID(t))
	}
	return &identity, nil
}

func (s *PostgresStore) HasActivePermission(ctx context.Context, roleID id.RoleID, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM role_permissions rp
			JOIN permissions p ON p.id = rp.permission_id
			WHERE rp.role_id = $1 AND rp.is_active AND p.is_active AND p.name = $2
		)
	`
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, int64(roleID), name).Scan(&ok); err != nil {
		return false, fmt.Errorf("check role permission: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) ListActivePermissionNames(ctx context.Context, roleID id.RoleID) ([]string, error) {
	query := `
		SELECT p.name FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND rp.is_active AND p.is_active
		ORDER BY p.name
	`
	rows, err := s.db.QueryContext(ctx, query, int64(roleID))
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan permission name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const permissionColumns = `id, name, resource, action, category, description, is_active`

func scanPermission(row interface{ Scan(...any) error }) (models.Permission, error) {
	var p models.Permission
	err := row.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Category, &p.Description, &p.IsActive)
	return p, err
}

func (s *PostgresStore) queryPermissions(ctx context.Context, query string, args ...any) ([]models.Permission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()
	out := []models.Permission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.queryPermissions(ctx, `SELECT `+permissionColumns+` FROM permissions ORDER BY id`)
}

func (s *PostgresStore) FindPermission(ctx context.Context, permissionID id.PermissionID) (*models.Permission, error) {
	p, err := scanPermission(s.db.QueryRowContext(ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, int64(permissionID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("permission %s: %w", permissionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreatePermission(ctx context.Context, p *models.Permission) error {
	query := `
		INSERT INTO permissions (name, resource, action, category, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, p.Name, p.Resource, p.Action, p.Category, p.Description, p.IsActive).Scan(&p.ID)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("permission %q: %w", p.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert permission: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdatePermission(ctx context.Context, p *models.Permission) error {
	query := `
		UPDATE permissions
		SET name = $2, resource = $3, action = $4, category = $5, description = $6, is_active = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, int64(p.ID), p.Name, p.Resource, p.Action, p.Category, p.Description, p.IsActive)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("permission %q: %w", p.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	return requireRow(res, fmt.Sprintf("permission %s", p.ID))
}

func (s *PostgresStore) DeletePermission(ctx context.Context, permissionID id.PermissionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, int64(permissionID))
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return requireRow(res, fmt.Sprintf("permission %s", permissionID))
}

const roleColumns = `id, name, description, is_active`

func (s *PostgresStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()
	out := []models.Role{}
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindRole(ctx context.Context, roleID id.RoleID) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, int64(roleID)).
		Scan(&r.ID, &r.Name, &r.Description, &r.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %s: %w", roleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) CreateRole(ctx context.Context, r *models.Role) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO roles (name, description, is_active) VALUES ($1, $2, $3) RETURNING id`,
		r.Name, r.Description, r.IsActive).Scan(&r.ID)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("role %q: %w", r.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateRole(ctx context.Context, r *models.Role) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE roles SET name = $2, description = $3, is_active = $4 WHERE id = $1`,
		int64(r.ID), r.Name, r.Description, r.IsActive)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("role %q: %w", r.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return requireRow(res, fmt.Sprintf("role %s", r.ID))
}

func (s *PostgresStore) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, int64(roleID))
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return requireRow(res, fmt.Sprintf("role %s", roleID))
}

func (s *PostgresStore) ListRolePermissions(ctx context.Context, roleID id.RoleID) ([]models.Permission, error) {
	if _, err := s.FindRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.queryPermissions(ctx, `
		SELECT p.id, p.name, p.resource, p.action, p.category, p.description, p.is_active
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND rp.is_active
		ORDER BY p.id`, int64(roleID))
}

func (s *PostgresStore) AttachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id, is_active)
		SELECT r.id, p.id, true FROM roles r, permissions p
		WHERE r.id = $1 AND p.id = $2
		ON CONFLICT (role_id, permission_id) DO UPDATE SET is_active = true
	`
	res, err := s.db.ExecContext(ctx, query, int64(roleID), int64(permissionID))
	if err != nil {
		return fmt.Errorf("attach permission: %w", err)
	}
	return requireRow(res, fmt.Sprintf("role %s or permission %s", roleID, permissionID))
}

func (s *PostgresStore) DetachPermission(ctx context.Context, roleID id.RoleID, permissionID id.PermissionID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
		int64(roleID), int64(permissionID))
	if err != nil {
		return fmt.Errorf("detach permission: %w", err)
	}
	return requireRow(res, fmt.Sprintf("role permission %s/%s", roleID, permissionID))
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
