package model

import "time"

// AuditEntry records one successful mutating operation.
type AuditEntry struct {
	ID         string    `json:"id" db:"id"`
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	ActorRole  Role      `json:"actor_role" db:"actor_role"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Before     string    `json:"before,omitempty" db:"before_state"`
	After      string    `json:"after,omitempty" db:"after_state"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Entity types named in audit entries and errors.
const (
	EntityStockItem     = "stock_item"
	EntityRequest       = "request"
	EntityIssuance      = "issuance"
	EntityRepairRequest = "repair_request"
	EntityUnderRepair   = "under_repair_item"
	EntityUser          = "user"
	EntityNotification  = "notification"
)
