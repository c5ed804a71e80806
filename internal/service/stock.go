package service

import (
	"context"
	"strings"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

// StockInput is the editable part of a stock item. Quantity is only read
// on creation; afterwards it moves through issuing and restocking.
type StockInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
	Unit        string `json:"unit"`
	Location    string `json:"location"`
	Status      string `json:"status"`
}

func (in *StockInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Status = normalizeStatus(in.Status)

	if in.Name == "" {
		return &model.ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Quantity < 0 {
		return &model.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if in.MinQuantity < 0 {
		return &model.ValidationError{Field: "min_quantity", Reason: "must not be negative"}
	}
	if in.Unit == "" {
		in.Unit = model.DefaultUnit
	}
	if in.Status == "" {
		in.Status = model.StockStatusInStock
	}
	if !model.ValidStockStatus(in.Status) {
		return &model.ValidationError{Field: "status", Reason: "must be in-stock, in-use, under-repair or damaged"}
	}
	return nil
}

// CreateStockItem adds an item to the ledger.
func (e *Engine) CreateStockItem(ctx context.Context, actor model.Actor, in StockInput) (*model.StockItem, error) {
	if !actor.Role.CanFulfill() {
		return nil, forbidden(actor, "manage stock", model.Role.CanFulfill)
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := e.ensureUniqueName(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	return audited(ctx, e, actor, "stock.create", model.EntityStockItem, nil, func() (*model.StockItem, error) {
		return store.CreateStockItem(ctx, e.DB, model.StockItem{
			Name:        in.Name,
			Category:    in.Category,
			Quantity:    in.Quantity,
			MinQuantity: in.MinQuantity,
			Unit:        in.Unit,
			Location:    in.Location,
			Status:      in.Status,
		}, actor.ID)
	})
}

// UpdateStockItem changes an item's metadata, never its quantity.
func (e *Engine) UpdateStockItem(ctx context.Context, actor model.Actor, id int64, in StockInput) (*model.StockItem, error) {
	if !actor.Role.CanFulfill() {
		return nil, forbidden(actor, "manage stock", model.Role.CanFulfill)
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	before, err := e.GetStockItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.ensureUniqueName(ctx, in.Name, id); err != nil {
		return nil, err
	}

	return audited(ctx, e, actor, "stock.update", model.EntityStockItem, before, func() (*model.StockItem, error) {
		item := *before
		item.Name = in.Name
		item.Category = in.Category
		item.MinQuantity = in.MinQuantity
		item.Unit = in.Unit
		item.Location = in.Location
		item.Status = in.Status
		if err := store.UpdateStockItem(ctx, e.DB, item, actor.ID); err != nil {
			return nil, err
		}
		return store.GetStockItem(ctx, e.DB, id)
	})
}

// RestockItem returns quantity units to the ledger.
func (e *Engine) RestockItem(ctx context.Context, actor model.Actor, id int64, quantity int) (*model.StockItem, error) {
	if !actor.Role.CanFulfill() {
		return nil, forbidden(actor, "manage stock", model.Role.CanFulfill)
	}

	before, err := e.GetStockItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := audited(ctx, e, actor, "stock.restock", model.EntityStockItem, before, func() (*model.StockItem, error) {
		return store.RestoreStock(ctx, e.DB, id, quantity, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	e.Log.Info().Str("item", item.Name).Int("added", quantity).Int("quantity", item.Quantity).
		Str("by", actor.Username).Msg("stock restocked")
	return item, nil
}

// GetStockItem returns a stock item by ID.
func (e *Engine) GetStockItem(ctx context.Context, id int64) (*model.StockItem, error) {
	item, err := store.GetStockItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.NotFoundError{Entity: model.EntityStockItem, ID: id}
	}
	return item, nil
}

// ListStock returns the ledger, or only low items when lowOnly is set.
func (e *Engine) ListStock(ctx context.Context, lowOnly bool) ([]model.StockItem, error) {
	return store.ListStockItems(ctx, e.DB, lowOnly)
}

func (e *Engine) ensureUniqueName(ctx context.Context, name string, selfID int64) error {
	existing, err := store.GetStockItemByName(ctx, e.DB, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &model.ValidationError{Field: "name", Reason: "is already used by another stock item"}
	}
	return nil
}
