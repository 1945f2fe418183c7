package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/booking"
	"innkeep/internal/app/dto"
)

const dateLayout = "2006-01-02"

type AvailabilityHandler struct {
	Processor *booking.Processor
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	checkIn, checkOut, units, ok := stayQuery(c)
	if !ok {
		return
	}
	avail, err := h.Processor.CheckAvailability(c.Request.Context(), checkIn, checkOut, units)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapAvailability(avail))
}

func (h AvailabilityHandler) Quote(c *gin.Context) {
	checkIn, checkOut, units, ok := stayQuery(c)
	if !ok {
		return
	}
	quote, err := h.Processor.Quote(c.Request.Context(), checkIn, checkOut, units)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapQuote(quote))
}

func stayQuery(c *gin.Context) (checkIn, checkOut time.Time, units int, ok bool) {
	var err error
	checkIn, err = time.Parse(dateLayout, c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be a YYYY-MM-DD date"})
		return
	}
	checkOut, err = time.Parse(dateLayout, c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be a YYYY-MM-DD date"})
		return
	}
	units = 1
	if raw := c.Query("units"); raw != "" {
		units, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "units must be an integer"})
			return
		}
	}
	return checkIn, checkOut, units, true
}
