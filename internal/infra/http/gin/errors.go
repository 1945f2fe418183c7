package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/booking"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/daterange"
)

// respondError translates domain failures into HTTP statuses. Validation
// errors name the violated constraint; a capacity race is a conflict the
// caller may retry after a fresh availability check.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, reservation.ErrInvalidUnits),
		errors.Is(err, reservation.ErrInvalidDepositFraction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrCapacityRace):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
