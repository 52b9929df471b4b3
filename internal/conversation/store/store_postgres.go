package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crm/internal/conversation/models"
	id "crm/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, conversationID id.ConversationID) (*models.Conversation, error) {
	query := `
		SELECT id, status, COALESCE(assigned_team_id, 0), COALESCE(assigned_user_id, 0),
		       COALESCE(assignment_method, ''), team_assigned_at, user_assigned_at, updated_at
		FROM conversations WHERE id = $1
	`
	var (
		c              models.Conversation
		teamAssignedAt sql.NullTime
		userAssignedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, int64(conversationID)).Scan(
		&c.ID, &c.Status, &c.AssignedTeamID, &c.AssignedUserID, &c.AssignmentMethod,
		&teamAssignedAt, &userAssignedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if teamAssignedAt.Valid {
		c.TeamAssignedAt = &teamAssignedAt.Time
	}
	if userAssignedAt.Valid {
		c.UserAssignedAt = &userAssignedAt.Time
	}
	return &c, nil
}

func (s *PostgresStore) AssignTeam(ctx context.Context, conversationID id.ConversationID, teamID id.TeamID, method string, at time.Time) error {
	query := `
		UPDATE conversations
		SET assigned_team_id = $2, assigned_user_id = NULL, assignment_method = $3,
		    team_assigned_at = $4, user_assigned_at = NULL, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, int64(conversationID), int64(teamID), method, at)
	if err != nil {
		return fmt.Errorf("assign conversation team: %w", err)
	}
	return requireRow(res, conversationID)
}

func (s *PostgresStore) AssignUser(ctx context.Context, conversationID id.ConversationID, userID id.IdentityID, method string, at time.Time) error {
	query := `
		UPDATE conversations
		SET assigned_user_id = $2, assignment_method = $3, user_assigned_at = $4, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, int64(conversationID), int64(userID), method, at)
	if err != nil {
		return fmt.Errorf("assign conversation user: %w", err)
	}
	return requireRow(res, conversationID)
}

func (s *PostgresStore) Close(ctx context.Context, conversationID id.ConversationID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET status = $2, updated_at = $3 WHERE id = $1`,
		int64(conversationID), models.StatusClosed, at)
	if err != nil {
		return fmt.Errorf("close conversation: %w", err)
	}
	return requireRow(res, conversationID)
}

func requireRow(res sql.Result, conversationID id.ConversationID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	return nil
}
