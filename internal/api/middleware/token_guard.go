package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sempaphie/FSMappointment/internal/metrics"
	"github.com/sempaphie/FSMappointment/internal/ratelimit"
)

// TokenGuard protects the customer token endpoints. Access tokens are
// unguessable, but failed lookups are still budgeted per IP so the token
// space cannot be probed, and booking submissions are budgeted per
// instance token so one customer cannot spam resubmissions.
type TokenGuard struct {
	limiter *ratelimit.Limiter
}

// NewTokenGuard creates a token guard with the given rate limit config.
func NewTokenGuard(config ratelimit.Config) *TokenGuard {
	return &TokenGuard{
		limiter: ratelimit.NewLimiter(config),
	}
}

// BlockOnLookupFailures rejects callers whose failed-lookup budget is
// already exhausted, before the handler touches storage.
func (g *TokenGuard) BlockOnLookupFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := ratelimit.BuildKey(ip, ratelimit.LimitTypeTokenLookupFailure)

		// Peek without consuming: a fresh or refilled bucket lets the
		// request through, and only RecordLookupFailure drains it.
		if g.limiter.Peek(key, ratelimit.LimitTypeTokenLookupFailure) < 1.0 {
			allowed, retryAfter := g.limiter.Allow(key, ratelimit.LimitTypeTokenLookupFailure)
			if !allowed {
				metrics.RateLimitBlocks.WithLabelValues(string(ratelimit.LimitTypeTokenLookupFailure), ip).Inc()
				c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error":       "rate_limit_exceeded",
					"message":     "Too many failed attempts",
					"retry_after": retryAfter,
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RecordLookupFailure consumes one token from the caller's failure budget.
// Handlers call this when a token lookup misses.
func (g *TokenGuard) RecordLookupFailure(c *gin.Context) {
	ip := c.ClientIP()
	key := ratelimit.BuildKey(ip, ratelimit.LimitTypeTokenLookupFailure)
	allowed, _ := g.limiter.Allow(key, ratelimit.LimitTypeTokenLookupFailure)
	metrics.RateLimitChecks.WithLabelValues(string(ratelimit.LimitTypeTokenLookupFailure), fmt.Sprintf("%t", allowed)).Inc()
}

// RateLimitBookingSubmit budgets booking submissions per access token.
func (g *TokenGuard) RateLimitBookingSubmit() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.Next()
			return
		}

		key := ratelimit.BuildKey(token, ratelimit.LimitTypeBookingSubmit)
		allowed, retryAfter := g.limiter.Allow(key, ratelimit.LimitTypeBookingSubmit)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many booking submissions",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitHealthCheck budgets unauthenticated health check requests per IP.
func (g *TokenGuard) RateLimitHealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := ratelimit.BuildKey(ip, ratelimit.LimitTypeHealthCheck)

		allowed, retryAfter := g.limiter.Allow(key, ratelimit.LimitTypeHealthCheck)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Rate limit exceeded for health checks",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Stop gracefully stops the underlying rate limiter.
func (g *TokenGuard) Stop() {
	g.limiter.Stop()
}
