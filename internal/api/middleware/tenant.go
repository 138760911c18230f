package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/logging"
	"github.com/sempaphie/FSMappointment/internal/service"
	"github.com/sempaphie/FSMappointment/models"
)

// Identity header names set by the embedded dashboard from its host context.
const (
	HeaderAccountID = "X-Account-ID"
	HeaderCompanyID = "X-Company-ID"
)

// TenantConfig holds dependencies for tenant resolution.
type TenantConfig struct {
	Tenants *service.TenantService
	Logger  *zap.Logger
}

// RequireTenant resolves and validates the tenant from the request identity.
//
// The dispatcher-facing endpoints carry the host identity as headers, with a
// tenantId query parameter accepted as a fallback for embedded dashboards
// that cannot set headers. The middleware runs the license decision chain
// and rejects anything that is not VALID. The resolved tenant ID is stored
// in the request context for handlers and the request logger.
func RequireTenant(config *TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, companyID := resolveIdentity(c)
		if accountID == "" || companyID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "missing_identity",
				"message": "X-Account-ID and X-Company-ID headers (or tenantId query parameter) are required",
			})
			c.Abort()
			return
		}

		result, err := config.Tenants.ValidateTenant(c.Request.Context(), accountID, companyID)
		if err != nil {
			config.Logger.Error("tenant resolution failed",
				zap.String(logging.FieldAccountID, accountID),
				zap.String(logging.FieldCompanyID, companyID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Tenant validation failed",
			})
			c.Abort()
			return
		}

		if !result.IsValid {
			status := http.StatusForbidden
			if result.Status == models.ValidationNotFound {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{
				"error":   string(result.Status),
				"message": result.Message,
			})
			c.Abort()
			return
		}

		c.Set("tenant_id", result.Tenant.TenantID)
		c.Set("account_id", accountID)
		c.Set("company_id", companyID)

		c.Next()
	}
}

// resolveIdentity extracts the account and company IDs from the identity
// headers, falling back to the tenantId query parameter. Tenant IDs are
// accountId and companyId joined by the first underscore.
func resolveIdentity(c *gin.Context) (accountID, companyID string) {
	accountID = c.GetHeader(HeaderAccountID)
	companyID = c.GetHeader(HeaderCompanyID)
	if accountID != "" && companyID != "" {
		return accountID, companyID
	}

	if tenantID := c.Query("tenantId"); tenantID != "" {
		if account, company, ok := strings.Cut(tenantID, "_"); ok {
			return account, company
		}
	}

	return accountID, companyID
}
