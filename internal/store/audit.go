package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
)

// AuditFilter narrows ListAuditEntries. Zero values match everything.
type AuditFilter struct {
	EntityType string
	EntityID   int64
	ActorID    int64
	Limit      int
}

const defaultAuditLimit = 100

// InsertAuditEntry appends an entry to the audit log, assigning an ID if
// the entry has none.
func InsertAuditEntry(ctx context.Context, db sqlx.ExtContext, e model.AuditEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_log (id, actor_id, actor_role, action, entity_type, entity_id, before_state, after_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, e.ActorRole, e.Action, e.EntityType, e.EntityID, e.Before, e.After,
	)
	if err != nil {
		return "", fmt.Errorf("inserting audit entry: %w", err)
	}
	return e.ID, nil
}

// ListAuditEntries returns audit entries, newest first.
func ListAuditEntries(ctx context.Context, db sqlx.ExtContext, f AuditFilter) ([]model.AuditEntry, error) {
	query := `SELECT id, actor_id, actor_role, action, entity_type, entity_id, before_state, after_state, created_at
	          FROM audit_log WHERE 1=1`
	var args []any

	if f.EntityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, f.EntityType)
	}
	if f.EntityID > 0 {
		query += ` AND entity_id = ?`
		args = append(args, f.EntityID)
	}
	if f.ActorID > 0 {
		query += ` AND actor_id = ?`
		args = append(args, f.ActorID)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	var out []model.AuditEntry
	if err := sqlx.SelectContext(ctx, db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	return out, nil
}
