package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/fsm"
	"github.com/sempaphie/FSMappointment/internal/service"
	"github.com/sempaphie/FSMappointment/models"
)

// ActivityFetcher fetches activities for a tenant. The default
// implementation builds a per-tenant FSM client; tests substitute a stub.
type ActivityFetcher func(ctx context.Context, tenant *models.Tenant) ([]models.Activity, error)

// ActivityHandler serves the tenant's open FSM activities to the
// dispatcher dashboard.
type ActivityHandler struct {
	tenants *service.TenantService
	logger  *zap.Logger
	fetch   ActivityFetcher
}

// NewActivityHandler creates a new activity handler using the real FSM
// Data API client.
func NewActivityHandler(tenants *service.TenantService, logger *zap.Logger) *ActivityHandler {
	h := &ActivityHandler{
		tenants: tenants,
		logger:  logger,
	}
	h.fetch = func(ctx context.Context, tenant *models.Tenant) ([]models.Activity, error) {
		return fsm.NewClient(ctx, tenant, logger).FetchActivities(ctx)
	}
	return h
}

// NewActivityHandlerWithFetcher creates an activity handler with a custom
// fetcher (for tests).
func NewActivityHandlerWithFetcher(tenants *service.TenantService, logger *zap.Logger, fetch ActivityFetcher) *ActivityHandler {
	return &ActivityHandler{
		tenants: tenants,
		logger:  logger,
		fetch:   fetch,
	}
}

// List handles GET /api/v1/activities.
//
// The tenant's stored OAuth credentials drive the upstream request; they
// are loaded through the credentials path and never serialized back out.
func (h *ActivityHandler) List(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		respondError(c, http.StatusForbidden, "forbidden", "Tenant context required")
		return
	}

	tenant, err := h.tenants.GetTenantCredentials(c.Request.Context(), tenantID)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	activities, err := h.fetch(c.Request.Context(), tenant)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ActivityListResponse{
		Success:    true,
		Activities: activities,
		Total:      len(activities),
	})
}
