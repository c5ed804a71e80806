package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
)

const stockColumns = `id, name, category, quantity, min_quantity, unit, location, status,
	created_at, updated_at, updated_by`

// CreateStockItem adds a new item to the ledger.
func CreateStockItem(ctx context.Context, db sqlx.ExtContext, item model.StockItem, actorID int64) (*model.StockItem, error) {
	if item.Unit == "" {
		item.Unit = model.DefaultUnit
	}
	if item.Status == "" {
		item.Status = model.StockStatusInStock
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO stock_items (name, category, quantity, min_quantity, unit, location, status, updated_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Quantity, item.MinQuantity, item.Unit, item.Location, item.Status, nullID(actorID),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stock item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting stock item id: %w", err)
	}

	return GetStockItem(ctx, db, id)
}

// GetStockItem returns a stock item by ID.
func GetStockItem(ctx context.Context, db sqlx.ExtContext, id int64) (*model.StockItem, error) {
	item := &model.StockItem{}
	err := sqlx.GetContext(ctx, db, item,
		`SELECT `+stockColumns+` FROM stock_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting stock item: %w", err)
	}
	return item, nil
}

// GetStockItemByName returns the stock item with the given name.
func GetStockItemByName(ctx context.Context, db sqlx.ExtContext, name string) (*model.StockItem, error) {
	item := &model.StockItem{}
	err := sqlx.GetContext(ctx, db, item,
		`SELECT `+stockColumns+` FROM stock_items WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting stock item by name: %w", err)
	}
	return item, nil
}

// ListStockItems returns all stock items ordered by name. With lowOnly set,
// only items at or below their minimum quantity are returned.
func ListStockItems(ctx context.Context, db sqlx.ExtContext, lowOnly bool) ([]model.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items`
	if lowOnly {
		query += ` WHERE quantity <= min_quantity`
	}
	query += ` ORDER BY name`

	var items []model.StockItem
	if err := sqlx.SelectContext(ctx, db, &items, query); err != nil {
		return nil, fmt.Errorf("listing stock items: %w", err)
	}
	return items, nil
}

// UpdateStockItem updates an item's metadata. The quantity column is left
// alone; it only moves through DeductStock and RestoreStock.
func UpdateStockItem(ctx context.Context, db sqlx.ExtContext, item model.StockItem, actorID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE stock_items
		 SET name = ?, category = ?, min_quantity = ?, unit = ?, location = ?, status = ?,
		     updated_at = CURRENT_TIMESTAMP, updated_by = ?
		 WHERE id = ?`,
		item.Name, item.Category, item.MinQuantity, item.Unit, item.Location, item.Status, nullID(actorID), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stock item: %w", err)
	}
	return nil
}

// DeductStock atomically removes quantity units from the named item.
// The check and the decrement are one conditional UPDATE, so concurrent
// callers can never drive the quantity below zero. On failure the row is
// untouched and the error is model.ErrItemNotFound or an
// *model.InsufficientStockError.
func DeductStock(ctx context.Context, db sqlx.ExtContext, name string, quantity int, actorID int64) (*model.Deduction, error) {
	if quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	var newQuantity int
	err := sqlx.GetContext(ctx, db, &newQuantity,
		`UPDATE stock_items
		 SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP, updated_by = ?
		 WHERE name = ? AND quantity >= ?
		 RETURNING quantity`,
		quantity, nullID(actorID), name, quantity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		item, lookupErr := GetStockItemByName(ctx, db, name)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if item == nil {
			return nil, fmt.Errorf("deducting %q: %w", name, model.ErrItemNotFound)
		}
		return nil, &model.InsufficientStockError{Item: name, Available: item.Quantity, Requested: quantity}
	}
	if err != nil {
		return nil, fmt.Errorf("deducting stock: %w", err)
	}

	item, err := GetStockItemByName(ctx, db, name)
	if err != nil {
		return nil, err
	}

	return &model.Deduction{
		Item:        item,
		Deducted:    quantity,
		NewQuantity: newQuantity,
		LowStock:    newQuantity <= item.MinQuantity,
	}, nil
}

// RestoreStock adds quantity units back to an item (restocking, returns).
func RestoreStock(ctx context.Context, db sqlx.ExtContext, id int64, quantity int, actorID int64) (*model.StockItem, error) {
	if quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE stock_items
		 SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP, updated_by = ?
		 WHERE id = ?`,
		quantity, nullID(actorID), id,
	)
	if err != nil {
		return nil, fmt.Errorf("restoring stock: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking restored rows: %w", err)
	}
	if n == 0 {
		return nil, &model.NotFoundError{Entity: model.EntityStockItem, ID: id}
	}

	return GetStockItem(ctx, db, id)
}
