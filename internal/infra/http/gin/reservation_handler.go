package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/booking"
	"innkeep/internal/app/dto"
	"innkeep/internal/domain/reservation"
)

type ReservationHandler struct {
	Processor *booking.Processor
	// DefaultDepositFraction applies when the request omits its own.
	DefaultDepositFraction float64
}

type createReservationRequest struct {
	CheckIn         string   `json:"check_in" binding:"required"`
	CheckOut        string   `json:"check_out" binding:"required"`
	Units           int      `json:"units" binding:"required"`
	DepositFraction *float64 `json:"deposit_fraction"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be a YYYY-MM-DD date"})
		return
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be a YYYY-MM-DD date"})
		return
	}
	fraction := h.DefaultDepositFraction
	if req.DepositFraction != nil {
		fraction = *req.DepositFraction
	}

	result, err := h.Processor.AttemptBooking(c.Request.Context(), checkIn, checkOut, req.Units, fraction)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Available {
		// Not an error: the caller can probe alternative dates with the
		// nights/units_available hints.
		c.JSON(http.StatusOK, dto.MapBookingOutcome(result))
		return
	}
	c.JSON(http.StatusCreated, dto.MapBookingOutcome(result))
}

func (h ReservationHandler) Get(c *gin.Context) {
	res, err := h.Processor.Reservation(c.Request.Context(), reservation.Reference(c.Param("ref")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReservation(res))
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	res, err := h.Processor.ConfirmDeposit(c.Request.Context(), reservation.Reference(c.Param("ref")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReservation(res))
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	if err := h.Processor.CancelBooking(c.Request.Context(), reservation.Reference(c.Param("ref"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ ReservationHTTP = ReservationHandler{}
var _ AvailabilityHTTP = AvailabilityHandler{}
