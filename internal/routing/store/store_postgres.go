package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm/internal/platform/postgres"
	"crm/internal/routing/models"
	id "crm/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ruleColumns = `id, keyword, team_id, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (models.KeywordRule, error) {
	var r models.KeywordRule
	err := row.Scan(&r.ID, &r.Keyword, &r.TeamID, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *PostgresStore) listRules(ctx context.Context, query string) ([]models.KeywordRule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query keyword rules: %w", err)
	}
	defer rows.Close()
	out := []models.KeywordRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan keyword rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListRules(ctx context.Context) ([]models.KeywordRule, error) {
	return s.listRules(ctx, `SELECT `+ruleColumns+` FROM keyword_rules ORDER BY id`)
}

func (s *PostgresStore) ListActiveRules(ctx context.Context) ([]models.KeywordRule, error) {
	return s.listRules(ctx, `SELECT `+ruleColumns+` FROM keyword_rules WHERE is_active ORDER BY id`)
}

func (s *PostgresStore) FindRule(ctx context.Context, ruleID id.KeywordRuleID) (*models.KeywordRule, error) {
	r, err := scanRule(s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM keyword_rules WHERE id = $1`, int64(ruleID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("keyword rule %s: %w", ruleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find keyword rule: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) FindByKeyword(ctx context.Context, keyword string) (*models.KeywordRule, error) {
	k := models.NormalizeKeyword(keyword)
	r, err := scanRule(s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM keyword_rules WHERE lower(keyword) = $1`, k))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("keyword %q: %w", k, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find keyword: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) CreateRule(ctx context.Context, r *models.KeywordRule) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO keyword_rules (keyword, team_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		r.Keyword, int64(r.TeamID), r.IsActive, r.CreatedAt, r.UpdatedAt).Scan(&r.ID)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("keyword %q: %w", r.Keyword, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert keyword rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateRule(ctx context.Context, r *models.KeywordRule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE keyword_rules SET keyword = $2, team_id = $3, is_active = $4, updated_at = $5 WHERE id = $1`,
		int64(r.ID), r.Keyword, int64(r.TeamID), r.IsActive, r.UpdatedAt)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("keyword %q: %w", r.Keyword, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update keyword rule: %w", err)
	}
	return requireRow(res, r.ID)
}

func (s *PostgresStore) DeleteRule(ctx context.Context, ruleID id.KeywordRuleID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM keyword_rules WHERE id = $1`, int64(ruleID))
	if err != nil {
		return fmt.Errorf("delete keyword rule: %w", err)
	}
	return requireRow(res, ruleID)
}

func requireRow(res sql.Result, ruleID id.KeywordRuleID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("keyword rule %s: %w", ruleID, ErrNotFound)
	}
	return nil
}
