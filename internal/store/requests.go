package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
)

const requestSelect = `SELECT r.id, r.item_name, r.quantity, r.unit, r.purpose, r.priority, r.status,
	       r.requester_id, r.admin_remark, r.created_at, r.updated_at,
	       COALESCE(u.username, '') AS requester_name
	FROM requests r
	LEFT JOIN users u ON u.id = r.requester_id`

// RequestFilter narrows ListRequests. Zero values match everything.
type RequestFilter struct {
	RequesterID int64
	Status      string
}

// CreateRequest stores a new pending request.
func CreateRequest(ctx context.Context, db sqlx.ExtContext, req model.Request) (*model.Request, error) {
	if req.Unit == "" {
		req.Unit = model.DefaultUnit
	}
	if req.Priority == "" {
		req.Priority = model.PriorityNormal
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO requests (item_name, quantity, unit, purpose, priority, status, requester_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ItemName, req.Quantity, req.Unit, req.Purpose, req.Priority, model.RequestStatusPending, req.RequesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	return GetRequest(ctx, db, id)
}

// GetRequest returns a request by ID.
func GetRequest(ctx context.Context, db sqlx.ExtContext, id int64) (*model.Request, error) {
	req := &model.Request{}
	err := sqlx.GetContext(ctx, db, req, requestSelect+` WHERE r.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return req, nil
}

// ListRequests returns requests, newest first.
func ListRequests(ctx context.Context, db sqlx.ExtContext, f RequestFilter) ([]model.Request, error) {
	query := requestSelect + ` WHERE 1=1`
	var args []any

	if f.RequesterID > 0 {
		query += ` AND r.requester_id = ?`
		args = append(args, f.RequesterID)
	}
	if f.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, f.Status)
	}

	query += ` ORDER BY r.created_at DESC, r.id DESC`

	var out []model.Request
	if err := sqlx.SelectContext(ctx, db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return out, nil
}

// UpdateRequestStatus moves a request from one status to another. It only
// succeeds while the stored status still equals from, and reports whether
// the row changed. An empty remark keeps the existing one; a positive
// quantity overrides the requested quantity.
func UpdateRequestStatus(ctx context.Context, db sqlx.ExtContext, id int64, from, to, remark string, quantity int) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE requests
		 SET status = ?,
		     admin_remark = CASE WHEN ? <> '' THEN ? ELSE admin_remark END,
		     quantity = CASE WHEN ? > 0 THEN ? ELSE quantity END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, remark, remark, quantity, quantity, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating request status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking request update: %w", err)
	}
	return n == 1, nil
}
