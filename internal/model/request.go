package model

import "time"

// Request is a requester's ask for a quantity of a named stock item.
type Request struct {
	ID          int64     `json:"id" db:"id"`
	ItemName    string    `json:"item_name" db:"item_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Unit        string    `json:"unit" db:"unit"`
	Purpose     string    `json:"purpose,omitempty" db:"purpose"`
	Priority    string    `json:"priority" db:"priority"`
	Status      string    `json:"status" db:"status"`
	RequesterID int64     `json:"requester_id" db:"requester_id"`
	AdminRemark string    `json:"admin_remark,omitempty" db:"admin_remark"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not always populated).
	RequesterName string `json:"requester_name,omitempty" db:"requester_name"`
}

// Request statuses.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCompleted = "completed"
)

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidRequestPriority reports whether p is a valid item request priority.
func ValidRequestPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidRequestStatus reports whether s is a known request status.
func ValidRequestStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}
