package model

import "time"

// StockItem is a named, quantified inventory unit.
type StockItem struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category,omitempty" db:"category"`
	Quantity    int       `json:"quantity" db:"quantity"`
	MinQuantity int       `json:"min_quantity" db:"min_quantity"`
	Unit        string    `json:"unit" db:"unit"`
	Location    string    `json:"location,omitempty" db:"location"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy   *int64    `json:"updated_by,omitempty" db:"updated_by"`
}

// Stock item statuses.
const (
	StockStatusInStock     = "in-stock"
	StockStatusInUse       = "in-use"
	StockStatusUnderRepair = "under-repair"
	StockStatusDamaged     = "damaged"
)

// DefaultUnit is used when a stock item is created without a unit label.
const DefaultUnit = "pcs"

// ValidStockStatus reports whether s is a known stock item status.
func ValidStockStatus(s string) bool {
	switch s {
	case StockStatusInStock, StockStatusInUse, StockStatusUnderRepair, StockStatusDamaged:
		return true
	}
	return false
}

// LowStock reports whether the item is at or below its minimum quantity.
func (s *StockItem) LowStock() bool {
	return s.Quantity <= s.MinQuantity
}

// Deduction is the outcome of a successful ledger deduction.
type Deduction struct {
	Item        *StockItem `json:"item"`
	Deducted    int        `json:"deducted"`
	NewQuantity int        `json:"new_quantity"`
	LowStock    bool       `json:"low_stock"`
}
