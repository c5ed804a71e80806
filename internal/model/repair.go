package model

import "time"

// RepairRequest is an assessment-phase ask to repair damaged equipment or a location.
type RepairRequest struct {
	ID          int64     `json:"id" db:"id"`
	Location    string    `json:"location" db:"location"`
	Description string    `json:"description,omitempty" db:"description"`
	Priority    string    `json:"priority" db:"priority"`
	PhotoRef    string    `json:"photo_ref,omitempty" db:"photo_ref"`
	Status      string    `json:"status" db:"status"`
	RequesterID int64     `json:"requester_id" db:"requester_id"`
	AdminRemark string    `json:"admin_remark,omitempty" db:"admin_remark"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UnderRepairItem tracks an approved repair through execution.
type UnderRepairItem struct {
	ID              int64     `json:"id" db:"id"`
	RepairRequestID int64     `json:"repair_request_id" db:"repair_request_id"`
	Location        string    `json:"location" db:"location"`
	Priority        string    `json:"priority" db:"priority"`
	PhotoRef        string    `json:"photo_ref,omitempty" db:"photo_ref"`
	RequesterID     int64     `json:"requester_id" db:"requester_id"`
	Status          string    `json:"status" db:"status"`
	Remarks         string    `json:"remarks,omitempty" db:"remarks"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Repair request statuses.
const (
	RepairStatusPending   = "pending"
	RepairStatusApproved  = "approved"
	RepairStatusRejected  = "rejected"
	RepairStatusCompleted = "completed"
)

// Under-repair item statuses.
const (
	UnderRepairPending    = "pending"
	UnderRepairInProgress = "in_progress"
	UnderRepairCompleted  = "completed"
	UnderRepairCancelled  = "cancelled"
)

// ValidRepairPriority reports whether p is a valid repair priority.
func ValidRepairPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
