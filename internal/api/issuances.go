package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
	"github.com/erazemk/logistika/internal/store"
)

// IssuancesHandler handles the issuance journal endpoints.
type IssuancesHandler struct {
	Engine *service.Engine
}

// List handles GET /api/issuances. Supported filters: ?item=, ?recipient=
// and ?status=.
func (h *IssuancesHandler) List(c *gin.Context) {
	itemID, ok := queryID(c, "item")
	if !ok {
		return
	}
	recipientID, ok := queryID(c, "recipient")
	if !ok {
		return
	}

	list, err := h.Engine.ListIssuances(c.Request.Context(), actor(c), store.IssuanceFilter{
		StockItemID:     itemID,
		RecipientUserID: recipientID,
		Status:          c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []model.Issuance{}
	}
	c.JSON(http.StatusOK, list)
}

// Create handles POST /api/issuances, a direct issue without a request.
func (h *IssuancesHandler) Create(c *gin.Context) {
	var req service.DirectIssue
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.Engine.IssueDirect(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
