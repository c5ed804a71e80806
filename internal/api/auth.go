package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/erazemk/logistika/internal/auth"
	"github.com/erazemk/logistika/internal/service"
	"github.com/erazemk/logistika/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Engine    *service.Engine
	JWTSecret string
	Log       zerolog.Logger
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(c.Request.Context(), h.Engine.DB, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || user.DeletedAt != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.Log.Warn().Str("username", req.Username).Str("remote", c.ClientIP()).Msg("login failed")
		jsonError(c, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Log.Info().Str("user", user.Username).Str("role", string(user.Role)).Msg("user logged in")
	c.JSON(http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		jsonError(c, http.StatusUnauthorized, codeUnauthorized, "not authenticated")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	if err := store.RevokeToken(c.Request.Context(), h.Engine.DB, claims.ID, expires); err != nil {
		respondError(c, err)
		return
	}

	h.Log.Info().Str("user", claims.Username).Msg("user logged out")
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "current and new password required")
		return
	}

	if err := h.Engine.ChangeOwnPassword(c.Request.Context(), actor(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
