package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
)

const repairColumns = `id, location, description, priority, COALESCE(photo_ref, '') AS photo_ref,
	status, requester_id, admin_remark, created_at, updated_at`

const underRepairColumns = `id, repair_request_id, location, priority, COALESCE(photo_ref, '') AS photo_ref,
	requester_id, status, remarks, created_at, updated_at`

// RepairFilter narrows ListRepairRequests. Zero values match everything.
type RepairFilter struct {
	RequesterID int64
	Status      string
}

// CreateRepairRequest stores a new pending repair request.
func CreateRepairRequest(ctx context.Context, db sqlx.ExtContext, r model.RepairRequest) (*model.RepairRequest, error) {
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO repair_requests (location, description, priority, photo_ref, status, requester_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Location, r.Description, r.Priority, nullString(r.PhotoRef), model.RepairStatusPending, r.RequesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating repair request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting repair request id: %w", err)
	}

	return GetRepairRequest(ctx, db, id)
}

// GetRepairRequest returns a repair request by ID.
func GetRepairRequest(ctx context.Context, db sqlx.ExtContext, id int64) (*model.RepairRequest, error) {
	r := &model.RepairRequest{}
	err := sqlx.GetContext(ctx, db, r,
		`SELECT `+repairColumns+` FROM repair_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting repair request: %w", err)
	}
	return r, nil
}

// ListRepairRequests returns repair requests, newest first.
func ListRepairRequests(ctx context.Context, db sqlx.ExtContext, f RepairFilter) ([]model.RepairRequest, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_requests WHERE 1=1`
	var args []any

	if f.RequesterID > 0 {
		query += ` AND requester_id = ?`
		args = append(args, f.RequesterID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	var out []model.RepairRequest
	if err := sqlx.SelectContext(ctx, db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing repair requests: %w", err)
	}
	return out, nil
}

// UpdateRepairStatus moves a repair request from one status to another and
// reports whether the row changed. An empty remark keeps the existing one.
func UpdateRepairStatus(ctx context.Context, db sqlx.ExtContext, id int64, from, to, remark string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE repair_requests
		 SET status = ?,
		     admin_remark = CASE WHEN ? <> '' THEN ? ELSE admin_remark END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, remark, remark, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating repair status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking repair update: %w", err)
	}
	return n == 1, nil
}

// SetRepairPhoto attaches a stored photo to a repair request.
func SetRepairPhoto(ctx context.Context, db sqlx.ExtContext, id int64, ref string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE repair_requests SET photo_ref = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(ref), id,
	)
	if err != nil {
		return fmt.Errorf("setting repair photo: %w", err)
	}
	return nil
}

// CreateUnderRepairItem opens the execution record for an approved repair,
// snapshotting the request's location, priority, photo and requester.
// A second item for the same request violates the unique constraint.
func CreateUnderRepairItem(ctx context.Context, db sqlx.ExtContext, r *model.RepairRequest) (*model.UnderRepairItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO under_repair_items (repair_request_id, location, priority, photo_ref, requester_id, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Location, r.Priority, nullString(r.PhotoRef), r.RequesterID, model.UnderRepairPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating under-repair item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting under-repair item id: %w", err)
	}

	return GetUnderRepairItem(ctx, db, id)
}

// GetUnderRepairItem returns an under-repair item by ID.
func GetUnderRepairItem(ctx context.Context, db sqlx.ExtContext, id int64) (*model.UnderRepairItem, error) {
	u := &model.UnderRepairItem{}
	err := sqlx.GetContext(ctx, db, u,
		`SELECT `+underRepairColumns+` FROM under_repair_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting under-repair item: %w", err)
	}
	return u, nil
}

// GetUnderRepairByRequest returns the under-repair item opened for a repair request.
func GetUnderRepairByRequest(ctx context.Context, db sqlx.ExtContext, repairID int64) (*model.UnderRepairItem, error) {
	u := &model.UnderRepairItem{}
	err := sqlx.GetContext(ctx, db, u,
		`SELECT `+underRepairColumns+` FROM under_repair_items WHERE repair_request_id = ?`, repairID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting under-repair item by request: %w", err)
	}
	return u, nil
}

// ListUnderRepairItems returns under-repair items, optionally filtered by status.
func ListUnderRepairItems(ctx context.Context, db sqlx.ExtContext, status string) ([]model.UnderRepairItem, error) {
	query := `SELECT ` + underRepairColumns + ` FROM under_repair_items`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var out []model.UnderRepairItem
	if err := sqlx.SelectContext(ctx, db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing under-repair items: %w", err)
	}
	return out, nil
}

// UpdateUnderRepairStatus moves an under-repair item from one status to
// another and reports whether the row changed. Empty remarks keep the
// existing ones.
func UpdateUnderRepairStatus(ctx context.Context, db sqlx.ExtContext, id int64, from, to, remarks string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE under_repair_items
		 SET status = ?,
		     remarks = CASE WHEN ? <> '' THEN ? ELSE remarks END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, remarks, remarks, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating under-repair status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking under-repair update: %w", err)
	}
	return n == 1, nil
}
