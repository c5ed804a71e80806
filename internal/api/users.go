package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
)

// UsersHandler handles user management endpoints (administrative only).
type UsersHandler struct {
	Engine *service.Engine
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type updateUserRequest struct {
	Role string `json:"role" binding:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.Engine.ListUsers(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "username, password, and role required")
		return
	}

	user, err := h.Engine.CreateUser(c.Request.Context(), actor(c), req.Username, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.Engine.GetUser(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "role required")
		return
	}

	user, err := h.Engine.UpdateUserRole(c.Request.Context(), actor(c), id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/:id/password.
func (h *UsersHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "password required")
		return
	}

	if err := h.Engine.ResetPassword(c.Request.Context(), actor(c), id, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Engine.DeleteUser(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
