package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/auth"
	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

const claimsKey = "claims"

// AuthMiddleware validates the bearer token, rejects revoked tokens and
// stores the claims on the context.
func AuthMiddleware(secret string, db sqlx.ExtContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			jsonError(c, http.StatusUnauthorized, codeUnauthorized, "missing or invalid authorization header")
			return
		}

		claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			jsonError(c, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			return
		}

		revoked, err := store.IsTokenRevoked(c.Request.Context(), db, claims.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if revoked {
			jsonError(c, http.StatusUnauthorized, codeUnauthorized, "token has been revoked")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims stored by AuthMiddleware.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// actor returns the authenticated caller. Routes using it sit behind
// AuthMiddleware, so the claims are always present.
func actor(c *gin.Context) model.Actor {
	if claims := GetClaims(c); claims != nil {
		return claims.Actor()
	}
	return model.Actor{}
}
