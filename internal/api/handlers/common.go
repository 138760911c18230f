// Package handlers provides HTTP handlers for the appointment REST API.
//
// This package implements request handlers for all endpoints including
// health checks, tenant onboarding and validation, appointment instance
// management, customer bookings, time slots, activities, and the host
// context bridge.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sempaphie/FSMappointment/models"
)

// ErrorResponse represents a standardized error response.
//
// All API errors are returned in this format to provide consistent
// error handling for clients.
type ErrorResponse struct {
	// Error is the error code (e.g., "not_found", "validation_failed").
	Error string `json:"error"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// RequestID is the unique request ID for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse represents a standardized success response with data.
type SuccessResponse struct {
	// Data contains the response payload.
	Data interface{} `json:"data,omitempty"`

	// Message is an optional success message.
	Message string `json:"message,omitempty"`
}

// respondError sends a standardized error response.
//
// Error messages stay generic so internal details (and anything sensitive)
// never reach a caller through an error payload.
func respondError(c *gin.Context, statusCode int, errorCode string, message string) {
	requestID := ""
	if val, exists := c.Get("request_id"); exists {
		if id, ok := val.(string); ok {
			requestID = id
		}
	}

	c.JSON(statusCode, ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestID: requestID,
	})
}

// respondSuccess sends a standardized success response with data.
func respondSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Data: data,
	})
}

// mapErrorToResponse converts a models package error to an HTTP response.
//
// Domain errors map to status codes here; everything unknown collapses to
// a generic 500 so storage or upstream internals never leak to callers.
func mapErrorToResponse(c *gin.Context, err error) {
	// Validation failures carry the missing field names to the caller.
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		message := "Invalid request parameters"
		if len(vErr.MissingFields) > 0 {
			message = "Missing or invalid fields: " + strings.Join(vErr.MissingFields, ", ")
		}
		respondError(c, http.StatusBadRequest, "validation_failed", message)
		return
	}

	switch {
	// 404 Not Found errors
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrTenantNotFound),
		errors.Is(err, models.ErrInstanceNotFound):
		respondError(c, http.StatusNotFound, "not_found", "Resource not found")

	// 403 Forbidden errors
	case errors.Is(err, models.ErrTenantInactive),
		errors.Is(err, models.ErrLicenseExpired):
		respondError(c, http.StatusForbidden, "forbidden", "Access denied")

	// 410 Gone: the booking link outlived its validity window
	case errors.Is(err, models.ErrInstanceExpired):
		respondError(c, http.StatusGone, "expired", "This booking link has expired")

	// 400 Bad Request errors
	case errors.Is(err, models.ErrValidationFailed):
		respondError(c, http.StatusBadRequest, "validation_failed", "Invalid request parameters")

	// 409 Conflict errors
	case errors.Is(err, models.ErrAlreadyExists):
		respondError(c, http.StatusConflict, "conflict", "Resource already exists")

	// 422: dispatcher decision without a customer booking
	case errors.Is(err, models.ErrBookingRequired):
		respondError(c, http.StatusUnprocessableEntity, "booking_required", "No customer booking to respond to")

	// 429 Rate Limit errors
	case errors.Is(err, models.ErrRateLimitExceeded):
		respondError(c, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded")

	// 502 Bad Gateway: the FSM platform failed us
	case errors.Is(err, models.ErrUpstream),
		errors.Is(err, models.ErrUpstreamDecode):
		respondError(c, http.StatusBadGateway, "upstream_error", "Upstream platform request failed")

	// 503 Service Unavailable errors
	case errors.Is(err, models.ErrStorage):
		respondError(c, http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")

	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}
