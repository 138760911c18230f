// Package api provides the REST API for the appointment booking service.
//
// This package implements the HTTP layer including routing, middleware, and
// handlers. It uses Gin for HTTP handling and integrates with the tenant,
// appointment, and host bridge layers.
package api

import (
	"github.com/gin-gonic/gin"
)

// Context keys for storing resolved request information.
const (
	// ContextKeyTenantID stores the resolved tenant ID.
	ContextKeyTenantID = "tenant_id"

	// ContextKeyAccountID stores the account ID from the identity headers.
	ContextKeyAccountID = "account_id"

	// ContextKeyCompanyID stores the company ID from the identity headers.
	ContextKeyCompanyID = "company_id"

	// ContextKeyRequestID stores the unique request ID for tracing.
	ContextKeyRequestID = "request_id"
)

// GetTenantID retrieves the resolved tenant ID from the request context.
// Returns an empty string if tenant resolution has not run.
func GetTenantID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyTenantID); exists {
		if tenantID, ok := val.(string); ok {
			return tenantID
		}
	}
	return ""
}

// GetAccountID retrieves the account ID from the request context.
func GetAccountID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyAccountID); exists {
		if accountID, ok := val.(string); ok {
			return accountID
		}
	}
	return ""
}

// GetCompanyID retrieves the company ID from the request context.
func GetCompanyID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyCompanyID); exists {
		if companyID, ok := val.(string); ok {
			return companyID
		}
	}
	return ""
}

// GetRequestID retrieves the unique request ID from the request context.
func GetRequestID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyRequestID); exists {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// SetTenantID sets the resolved tenant ID in the request context.
func SetTenantID(c *gin.Context, tenantID string) {
	c.Set(ContextKeyTenantID, tenantID)
}

// SetIdentity sets the account and company IDs in the request context.
func SetIdentity(c *gin.Context, accountID, companyID string) {
	c.Set(ContextKeyAccountID, accountID)
	c.Set(ContextKeyCompanyID, companyID)
}

// SetRequestID sets the unique request ID in the request context.
func SetRequestID(c *gin.Context, requestID string) {
	c.Set(ContextKeyRequestID, requestID)
}
