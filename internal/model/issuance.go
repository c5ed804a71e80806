package model

import "time"

// Issuance records that a quantity of a stock item was handed to a recipient.
type Issuance struct {
	ID              int64     `json:"id" db:"id"`
	StockItemID     int64     `json:"stock_item_id" db:"stock_item_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	Unit            string    `json:"unit" db:"unit"`
	RecipientUserID *int64    `json:"recipient_user_id,omitempty" db:"recipient_user_id"`
	RecipientName   string    `json:"recipient_name,omitempty" db:"recipient_name"`
	IssuedBy        int64     `json:"issued_by" db:"issued_by"`
	Purpose         string    `json:"purpose,omitempty" db:"purpose"`
	Remarks         string    `json:"remarks,omitempty" db:"remarks"`
	Status          string    `json:"status" db:"status"`
	RequestID       *int64    `json:"request_id,omitempty" db:"request_id"`
	IssuedAt        time.Time `json:"issued_at" db:"issued_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty" db:"item_name"`
}

// Issuance statuses.
const (
	IssuanceStatusInUse       = "in-use"
	IssuanceStatusCompleted   = "completed"
	IssuanceStatusMaintenance = "maintenance"
	IssuanceStatusRepair      = "repair"
)

// ValidIssuanceStatus reports whether s is a known issuance status.
func ValidIssuanceStatus(s string) bool {
	switch s {
	case IssuanceStatusInUse, IssuanceStatusCompleted, IssuanceStatusMaintenance, IssuanceStatusRepair:
		return true
	}
	return false
}

// Recipient identifies who received an issuance: a user or a free-text name.
type Recipient struct {
	UserID *int64
	Name   string
}

// Empty reports whether neither a user nor a name is set.
func (r Recipient) Empty() bool {
	return r.UserID == nil && r.Name == ""
}
