package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket rate limiting keyed by identifier
// (client IP or tenant ID) with automatic cleanup of idle limiters.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
}

// NewRateLimiter creates a new rate limiter allowing rps requests per
// second with the given burst, cleaning idle entries every cleanup period.
func NewRateLimiter(rps float64, burst int, cleanup time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		cleanup:  cleanup,
	}

	go rl.cleanupLoop()

	return rl
}

// getLimiter gets or creates a rate limiter for the given identifier.
func (rl *RateLimiter) getLimiter(identifier string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[identifier]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[identifier] = limiter
	}

	return limiter
}

// cleanupLoop periodically removes limiters that sit at full tokens, which
// means they have not been used since the last refill.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for identifier, limiter := range rl.limiters {
			if limiter.Tokens() == float64(rl.burst) {
				delete(rl.limiters, identifier)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if a request from the given identifier should be allowed.
func (rl *RateLimiter) allow(identifier string) bool {
	return rl.getLimiter(identifier).Allow()
}

// RateLimitByIP creates middleware that rate limits requests by client IP
// address. Use this globally for basic abuse protection.
func RateLimitByIP(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 1*time.Minute)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitByTenant creates middleware that rate limits requests by the
// resolved tenant. Use this after tenant resolution middleware.
func RateLimitByTenant(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 5*time.Minute)

	return func(c *gin.Context) {
		tenantID, exists := c.Get("tenant_id")
		if !exists {
			// No tenant yet; resolution middleware handles rejection.
			c.Next()
			return
		}

		if !limiter.allow(tenantID.(string)) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
