package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
	"github.com/erazemk/logistika/internal/store"
)

// NotificationsHandler serves the caller's notifications and the audit log.
type NotificationsHandler struct {
	Engine *service.Engine
}

// List handles GET /api/notifications. ?unread=1 hides read notifications.
func (h *NotificationsHandler) List(c *gin.Context) {
	notes, err := h.Engine.ListNotifications(c.Request.Context(), actor(c), queryFlag(c, "unread"))
	if err != nil {
		respondError(c, err)
		return
	}
	if notes == nil {
		notes = []model.Notification{}
	}
	c.JSON(http.StatusOK, notes)
}

// MarkRead handles PUT /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Engine.MarkNotificationRead(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

// Audit handles GET /api/audit. Supported filters: ?entity=, ?entity_id=,
// ?actor= and ?limit=.
func (h *NotificationsHandler) Audit(c *gin.Context) {
	entityID, ok := queryID(c, "entity_id")
	if !ok {
		return
	}
	actorID, ok := queryID(c, "actor")
	if !ok {
		return
	}
	limit, ok := queryID(c, "limit")
	if !ok {
		return
	}

	entries, err := h.Engine.ListAudit(c.Request.Context(), actor(c), store.AuditFilter{
		EntityType: c.Query("entity"),
		EntityID:   entityID,
		ActorID:    actorID,
		Limit:      int(limit),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
