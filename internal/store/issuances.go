package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
)

const issuanceSelect = `SELECT i.id, i.stock_item_id, i.quantity, i.unit, i.recipient_user_id,
	       i.recipient_name, i.issued_by, i.purpose, i.remarks, i.status, i.request_id,
	       i.issued_at, s.name AS item_name
	FROM issuances i
	JOIN stock_items s ON s.id = i.stock_item_id`

// IssuanceFilter narrows ListIssuances. Zero values match everything.
type IssuanceFilter struct {
	StockItemID     int64
	RecipientUserID int64
	Status          string
}

// RecordIssuance appends an entry to the issuance journal.
func RecordIssuance(ctx context.Context, db sqlx.ExtContext, iss model.Issuance) (*model.Issuance, error) {
	if iss.Quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if iss.RecipientUserID == nil && iss.RecipientName == "" {
		return nil, &model.ValidationError{Field: "recipient", Reason: "a user or a name is required"}
	}
	if iss.Unit == "" {
		iss.Unit = model.DefaultUnit
	}
	if iss.Status == "" {
		iss.Status = model.IssuanceStatusInUse
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO issuances (stock_item_id, quantity, unit, recipient_user_id, recipient_name,
		                        issued_by, purpose, remarks, status, request_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		iss.StockItemID, iss.Quantity, iss.Unit, iss.RecipientUserID, iss.RecipientName,
		iss.IssuedBy, iss.Purpose, iss.Remarks, iss.Status, iss.RequestID,
	)
	if err != nil {
		return nil, fmt.Errorf("recording issuance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting issuance id: %w", err)
	}

	return GetIssuance(ctx, db, id)
}

// GetIssuance returns an issuance by ID.
func GetIssuance(ctx context.Context, db sqlx.ExtContext, id int64) (*model.Issuance, error) {
	iss := &model.Issuance{}
	err := sqlx.GetContext(ctx, db, iss, issuanceSelect+` WHERE i.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issuance: %w", err)
	}
	return iss, nil
}

// ListIssuances returns journal entries, newest first.
func ListIssuances(ctx context.Context, db sqlx.ExtContext, f IssuanceFilter) ([]model.Issuance, error) {
	query := issuanceSelect + ` WHERE 1=1`
	var args []any

	if f.StockItemID > 0 {
		query += ` AND i.stock_item_id = ?`
		args = append(args, f.StockItemID)
	}
	if f.RecipientUserID > 0 {
		query += ` AND i.recipient_user_id = ?`
		args = append(args, f.RecipientUserID)
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, f.Status)
	}

	query += ` ORDER BY i.issued_at DESC, i.id DESC`

	var out []model.Issuance
	if err := sqlx.SelectContext(ctx, db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing issuances: %w", err)
	}
	return out, nil
}

// SupersedeIssuances moves every entry for the item and recipient whose
// status is from over to status to, returning how many entries changed.
// A recipient with a user ID is matched by ID, otherwise by name.
func SupersedeIssuances(ctx context.Context, db sqlx.ExtContext, itemID int64, recipient model.Recipient, from, to string) (int64, error) {
	if recipient.Empty() {
		return 0, &model.ValidationError{Field: "recipient", Reason: "a user or a name is required"}
	}

	query := `UPDATE issuances SET status = ? WHERE stock_item_id = ? AND status = ?`
	args := []any{to, itemID, from}
	if recipient.UserID != nil {
		query += ` AND recipient_user_id = ?`
		args = append(args, *recipient.UserID)
	} else {
		query += ` AND recipient_user_id IS NULL AND recipient_name = ?`
		args = append(args, recipient.Name)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("superseding issuances: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting superseded issuances: %w", err)
	}
	return n, nil
}
