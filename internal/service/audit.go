package service

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

// Auditor records successful mutating operations.
type Auditor interface {
	Record(ctx context.Context, entry model.AuditEntry) error
}

// StoreAuditor writes entries to the audit_log table.
type StoreAuditor struct {
	DB *sqlx.DB
}

// Record appends the entry to the audit log.
func (a StoreAuditor) Record(ctx context.Context, entry model.AuditEntry) error {
	_, err := store.InsertAuditEntry(ctx, a.DB, entry)
	return err
}

// audited runs op and, when it succeeds, records who did what to which
// entity together with before and after snapshots. A failed audit write
// is logged; the operation's result stands.
func audited[T any](ctx context.Context, e *Engine, actor model.Actor, action, entity string, before any, op func() (T, error)) (T, error) {
	out, err := op()
	if err != nil || e.Auditor == nil {
		return out, err
	}

	entry := model.AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entity,
		EntityID:   entityID(out),
		Before:     snapshot(before),
		After:      snapshot(out),
	}
	if err := e.Auditor.Record(ctx, entry); err != nil {
		e.Log.Error().Err(err).
			Str("action", action).
			Str("entity", entity).
			Int64("entity_id", entry.EntityID).
			Msg("audit entry not recorded")
	}
	return out, nil
}

func entityID(v any) int64 {
	switch v := v.(type) {
	case *model.Request:
		return v.ID
	case *RequestOutcome:
		return v.Request.ID
	case *model.StockItem:
		return v.ID
	case *model.Issuance:
		return v.ID
	case *IssueOutcome:
		return v.Issuance.ID
	case *model.RepairRequest:
		return v.ID
	case *RepairOutcome:
		return v.Repair.ID
	case *model.UnderRepairItem:
		return v.ID
	case *model.User:
		return v.ID
	}
	return 0
}

func snapshot(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// ListAudit returns audit entries. Only administrative roles may read them.
func (e *Engine) ListAudit(ctx context.Context, actor model.Actor, f store.AuditFilter) ([]model.AuditEntry, error) {
	if !actor.Role.IsAdministrative() {
		return nil, forbidden(actor, "read the audit log", model.Role.IsAdministrative)
	}
	return store.ListAuditEntries(ctx, e.DB, f)
}
