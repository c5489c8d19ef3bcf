package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/flightbooking/internal/domain"
)

// writeError maps domain errors onto HTTP status codes: missing resources
// to 404, seat shortage to 409 (it depends on live data, not the request),
// bad input and impossible transitions to 400, policy refusals to 403.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "path": c.FullPath()})
	case errors.Is(err, domain.ErrNotEnoughSeats),
		errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "path": c.FullPath()})
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "path": c.FullPath()})
	case errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrInvalidOperation):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "path": c.FullPath()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "path": c.FullPath()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "path": c.FullPath()})
	}
}
