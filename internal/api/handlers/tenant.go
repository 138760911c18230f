package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sempaphie/FSMappointment/internal/service"
	"github.com/sempaphie/FSMappointment/models"
)

// TenantHandler handles tenant validation, onboarding, and updates.
//
// Everything this handler returns has passed through the sanitizing read
// paths of TenantService; the client secret is never present.
type TenantHandler struct {
	tenants *service.TenantService
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Validate handles GET /api/v1/validate.
//
// The dashboard calls this on every load with the identity from the host
// context. The response always carries the full decision (isValid, status,
// message) with HTTP 200; only a storage failure yields HTTP 500.
func (h *TenantHandler) Validate(c *gin.Context) {
	accountID := c.Query("accountId")
	companyID := c.Query("companyId")
	if accountID == "" || companyID == "" {
		respondError(c, http.StatusBadRequest, "validation_failed", "accountId and companyId are required")
		return
	}

	result, err := h.tenants.ValidateTenant(c.Request.Context(), accountID, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create handles POST /api/v1/tenant.
func (h *TenantHandler) Create(c *gin.Context) {
	var req models.TenantCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	tenant, err := h.tenants.CreateTenant(c.Request.Context(), &req)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.TenantResponse{
		Success: true,
		Tenant:  tenant,
		Message: "Tenant created with trial license",
	})
}

// Get handles GET /api/v1/tenant/:tenantId.
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.tenants.GetTenant(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TenantResponse{
		Success: true,
		Tenant:  tenant,
	})
}

// Update handles PUT /api/v1/tenant/:tenantId.
func (h *TenantHandler) Update(c *gin.Context) {
	var req models.TenantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	tenant, err := h.tenants.UpdateTenant(c.Request.Context(), c.Param("tenantId"), &req)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TenantResponse{
		Success: true,
		Tenant:  tenant,
		Message: "Tenant updated",
	})
}
