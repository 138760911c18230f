package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sempaphie/FSMappointment/internal/api/middleware"
	"github.com/sempaphie/FSMappointment/internal/service"
	"github.com/sempaphie/FSMappointment/models"
)

// AppointmentHandler handles the appointment instance lifecycle: bulk
// creation and listing for dispatchers, token-based access for customers,
// and the dispatcher decision.
type AppointmentHandler struct {
	appointments *service.AppointmentService
	tokenGuard   *middleware.TokenGuard
}

// NewAppointmentHandler creates a new appointment handler. tokenGuard may
// be nil when failure budgeting is disabled (tests).
func NewAppointmentHandler(appointments *service.AppointmentService, tokenGuard *middleware.TokenGuard) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		tokenGuard:   tokenGuard,
	}
}

// Create handles POST /api/v1/appointments.
//
// One instance per activity; partial failure is reported in the result,
// never as a transport error.
func (h *AppointmentHandler) Create(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		respondError(c, http.StatusForbidden, "forbidden", "Tenant context required")
		return
	}

	var req models.CreateInstancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := h.appointments.CreateInstances(c.Request.Context(), tenantID, &req)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, result)
}

// List handles GET /api/v1/appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		respondError(c, http.StatusForbidden, "forbidden", "Tenant context required")
		return
	}

	instances, err := h.appointments.ListInstances(c.Request.Context(), tenantID)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"instances": instances,
		"total":     len(instances),
	})
}

// GetByToken handles GET /api/v1/appointments/token/:token.
//
// This is the customer-facing read: the token is the only credential. A
// missed lookup consumes the caller's failure budget.
func (h *AppointmentHandler) GetByToken(c *gin.Context) {
	instance, err := h.appointments.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if err == models.ErrInstanceNotFound && h.tokenGuard != nil {
			h.tokenGuard.RecordLookupFailure(c)
		}
		mapErrorToResponse(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, instance)
}

// UpdateBooking handles PUT /api/v1/appointments/token/:token.
func (h *AppointmentHandler) UpdateBooking(c *gin.Context) {
	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	instance, err := h.appointments.UpdateCustomerBooking(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		if err == models.ErrInstanceNotFound && h.tokenGuard != nil {
			h.tokenGuard.RecordLookupFailure(c)
		}
		mapErrorToResponse(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, instance)
}

// Respond handles POST /api/v1/appointments/:instanceId/response.
//
// The dispatcher approves or rejects a submitted booking.
func (h *AppointmentHandler) Respond(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		respondError(c, http.StatusForbidden, "forbidden", "Tenant context required")
		return
	}

	var req models.RespondToBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	instance, err := h.appointments.RespondToBooking(c.Request.Context(), tenantID, c.Param("instanceId"), &req)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, instance)
}

// getTenantID reads the tenant ID placed by the tenant middleware.
func getTenantID(c *gin.Context) string {
	if val, exists := c.Get("tenant_id"); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
