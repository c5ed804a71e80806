package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/model"
)

// Error codes returned alongside the message.
const (
	codeBadRequest        = "BAD_REQUEST"
	codeUnauthorized      = "UNAUTHORIZED"
	codeForbidden         = "FORBIDDEN"
	codeNotFound          = "NOT_FOUND"
	codeInvalidTransition = "INVALID_TRANSITION"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeInternal          = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error     string       `json:"error"`
	Code      string       `json:"code"`
	Allowed   []model.Role `json:"allowed_roles,omitempty"`
	Available *int         `json:"available,omitempty"`
	Requested *int         `json:"requested,omitempty"`
}

// jsonError writes a JSON error response and stops the handler chain.
func jsonError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message, Code: code})
}

// respondError maps a service error onto an HTTP status. Unclassified
// errors are attached to the context for the request logger and reported
// as a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		forbidden    *model.ForbiddenError
		insufficient *model.InsufficientStockError
	)

	switch {
	case errors.As(err, &forbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
			Error:   err.Error(),
			Code:    codeForbidden,
			Allowed: forbidden.Allowed,
		})
	case errors.Is(err, model.ErrForbidden):
		jsonError(c, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		jsonError(c, http.StatusConflict, codeInvalidTransition, err.Error())
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			Error:     err.Error(),
			Code:      codeInsufficientStock,
			Available: &insufficient.Available,
			Requested: &insufficient.Requested,
		})
	case errors.Is(err, model.ErrItemNotFound), errors.Is(err, model.ErrNotFound):
		jsonError(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		jsonError(c, http.StatusBadRequest, codeBadRequest, err.Error())
	default:
		_ = c.Error(err)
		jsonError(c, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses the :id route parameter, answering 400 when it is not a
// positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryFlag reports whether a boolean query parameter is set to a true value.
func queryFlag(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// queryID parses an optional numeric query parameter. Missing means 0.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
