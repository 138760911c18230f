package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sempaphie/FSMappointment/internal/hostbridge"
)

// HostContextHandler exposes the host shell context resolved by the bridge.
type HostContextHandler struct {
	bridge *hostbridge.Bridge
}

// NewHostContextHandler creates a new host context handler.
func NewHostContextHandler(bridge *hostbridge.Bridge) *HostContextHandler {
	return &HostContextHandler{bridge: bridge}
}

// Get handles GET /api/v1/context.
//
// Returns the shell-provided identity plus the bridge state so the
// dashboard can tell an authoritative context from a fallback one.
func (h *HostContextHandler) Get(c *gin.Context) {
	if h.bridge == nil {
		respondError(c, http.StatusServiceUnavailable, "bridge_unavailable", "Host bridge is not configured")
		return
	}

	hostCtx, err := h.bridge.Context()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "context_unavailable", "Host context is not available")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"context": hostCtx,
		"state":   h.bridge.State(),
	})
}

// Refresh handles POST /api/v1/context/refresh.
func (h *HostContextHandler) Refresh(c *gin.Context) {
	if h.bridge == nil {
		respondError(c, http.StatusServiceUnavailable, "bridge_unavailable", "Host bridge is not configured")
		return
	}

	hostCtx, err := h.bridge.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "context_unavailable", "Host handshake failed")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"context": hostCtx,
		"state":   h.bridge.State(),
	})
}
