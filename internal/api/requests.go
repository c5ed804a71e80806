package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
)

// RequestsHandler handles item request endpoints.
type RequestsHandler struct {
	Engine *service.Engine
}

type transitionRequest struct {
	Status   string `json:"status" binding:"required"`
	Remark   string `json:"remark"`
	Quantity int    `json:"quantity"`
}

// List handles GET /api/requests, optionally filtered by ?status=.
func (h *RequestsHandler) List(c *gin.Context) {
	reqs, err := h.Engine.ListRequests(c.Request.Context(), actor(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	c.JSON(http.StatusOK, reqs)
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(c *gin.Context) {
	var req service.NewRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.Engine.CreateRequest(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/requests/:id.
func (h *RequestsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := h.Engine.GetRequest(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Transition handles PUT /api/requests/:id/status.
func (h *RequestsHandler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "status required")
		return
	}

	out, err := h.Engine.TransitionRequest(c.Request.Context(), actor(c), id, req.Status, service.TransitionOptions{
		Remark:   req.Remark,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
