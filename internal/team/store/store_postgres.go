package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm/internal/team/models"
	id "crm/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindTeam(ctx context.Context, teamID id.TeamID) (*models.Team, error) {
	query := `SELECT id, name, macrosetor, description, is_active FROM teams WHERE id = $1`
	var team models.Team
	err := s.db.QueryRowContext(ctx, query, int64(teamID)).Scan(
		&team.ID, &team.Name, &team.Macrosetor, &team.Description, &team.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &team, nil
}

func (s *PostgresStore) ListActiveMembers(ctx context.Context, teamID id.TeamID) ([]models.Membership, error) {
	query := `
		SELECT tm.team_id, tm.user_id, tm.role_in_team, tm.is_active
		FROM team_members tm
		JOIN system_users u ON u.id = tm.user_id
		WHERE tm.team_id = $1 AND tm.is_active AND u.is_active
		ORDER BY tm.user_id
	`
	rows, err := s.db.QueryContext(ctx, query, int64(teamID))
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var out []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.RoleInTeam, &m.IsActive); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team members: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UserExists(ctx context.Context, userID id.IdentityID) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM system_users WHERE id = $1)`, int64(userID)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return ok, nil
}
