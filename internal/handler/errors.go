package handler

import (
	"errors"
	"net/http"

	"invoicer/internal/apperror"
	"invoicer/internal/auth"
	"invoicer/internal/middleware"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps the apperror taxonomy onto HTTP statuses. Store failures
// are reported with a generic message and attached to the context for logging.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperror.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperror.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, apperror.ErrDuplicateKey):
		status, message = http.StatusConflict, "Duplicate invoice number"
	default:
		_ = c.Error(err)
	}

	c.JSON(status, response.Error(status, message))
}

// requireUser returns the authenticated owner or writes 401.
func requireUser(c *gin.Context) (auth.Identity, bool) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return auth.Identity{}, false
	}
	return identity, true
}
