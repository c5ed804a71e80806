package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
)

// StockHandler handles the inventory ledger endpoints.
type StockHandler struct {
	Engine *service.Engine
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

// List handles GET /api/stock. ?low=1 limits the result to low stock.
func (h *StockHandler) List(c *gin.Context) {
	items, err := h.Engine.ListStock(c.Request.Context(), queryFlag(c, "low"))
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []model.StockItem{}
	}
	c.JSON(http.StatusOK, items)
}

// Create handles POST /api/stock.
func (h *StockHandler) Create(c *gin.Context) {
	var req service.StockInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.Engine.CreateStockItem(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Get handles GET /api/stock/:id.
func (h *StockHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.Engine.GetStockItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update handles PUT /api/stock/:id.
func (h *StockHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.StockInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.Engine.UpdateStockItem(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Restock handles POST /api/stock/:id/restock.
func (h *StockHandler) Restock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req restockRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.Engine.RestockItem(c.Request.Context(), actor(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
