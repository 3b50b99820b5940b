package handlers

import (
	"errors"
	"net/http"

	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/models"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto the HTTP status categories: validation
// and conflict to 400, missing records to 404, ownership/role mismatches to
// 403, bad credentials to 401, everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalid), errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), models.ErrorResponse(err.Error()))
}

// sessionFrom pulls the authenticated session placed in the context by the
// auth middleware.
func sessionFrom(c *gin.Context) (*helpers.Session, bool) {
	v, exists := c.Get("session")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, false
	}
	session, ok := v.(*helpers.Session)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid session format"))
		return nil, false
	}
	return session, true
}
