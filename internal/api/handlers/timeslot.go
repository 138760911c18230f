package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sempaphie/FSMappointment/pkg/timeslot"
)

// TimeSlotHandler serves generated appointment time slots for the customer
// booking page.
type TimeSlotHandler struct{}

// NewTimeSlotHandler creates a new time slot handler.
func NewTimeSlotHandler() *TimeSlotHandler {
	return &TimeSlotHandler{}
}

// List handles GET /api/v1/timeslots.
//
// Slots are generated on demand; an optional "days" query parameter widens
// or narrows the horizon within the allowed maximum.
func (h *TimeSlotHandler) List(c *gin.Context) {
	days := timeslot.DefaultHorizonDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(c, http.StatusBadRequest, "validation_failed", "days must be a positive integer")
			return
		}
		days = parsed
	}

	slots := timeslot.GenerateHorizon(time.Now(), days)
	respondSuccess(c, http.StatusOK, gin.H{
		"timeSlots": slots,
		"total":     len(slots),
	})
}
