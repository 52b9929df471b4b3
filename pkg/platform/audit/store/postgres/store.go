package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
)

// Store implements audit.Store on the append-only audit_logs table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	details := []byte("{}")
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = b
	}

	var identityID sql.NullInt64
	if !entry.IdentityID.IsNil() {
		identityID = sql.NullInt64{Int64: int64(entry.IdentityID), Valid: true}
	}

	query := `
		INSERT INTO audit_logs (id, identity_id, action, resource, resource_id, details, result, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		identityID,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		details,
		string(entry.Result),
		entry.RequestID,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, identity_id, action, resource, resource_id, details, result, request_id, created_at FROM audit_logs`

func (s *Store) ListByIdentity(ctx context.Context, identityID id.IdentityID) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE identity_id = $1 ORDER BY created_at DESC`, int64(identityID))
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			identityID sql.NullInt64
			details    []byte
			result     string
		)
		if err := rows.Scan(&e.ID, &identityID, &e.Action, &e.Resource, &e.ResourceID, &details, &result, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if identityID.Valid {
			e.IdentityID = id.IdentityID(identityID.Int64)
		}
		e.Result = audit.Result(result)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
