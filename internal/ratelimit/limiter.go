// Package ratelimit implements token bucket rate limiting for the
// appointment server. Customer-facing endpoints are keyed by client IP and
// the token lookup path carries a separate, much tighter budget so access
// tokens cannot be brute forced.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// LimitType represents the type of rate limit to apply.
type LimitType string

const (
	// LimitTypeTokenLookupFailure is for failed customer token lookups per IP.
	LimitTypeTokenLookupFailure LimitType = "token_lookup_failure"

	// LimitTypeRequest is for general API requests per IP.
	LimitTypeRequest LimitType = "request"

	// LimitTypeBookingSubmit is for customer booking submissions per instance.
	LimitTypeBookingSubmit LimitType = "booking_submit"

	// LimitTypeHealthCheck is for unauthenticated health check requests per IP.
	LimitTypeHealthCheck LimitType = "health_check"
)

// Config holds the rate limiting configuration.
type Config struct {
	// TokenFailuresPerMin is the number of failed token lookups allowed per
	// minute per IP before the caller is blocked.
	TokenFailuresPerMin int

	// RequestsPerMin is the number of API requests allowed per minute per IP.
	RequestsPerMin int

	// BookingSubmitsPerMin is the number of booking submissions allowed per
	// minute per appointment instance.
	BookingSubmitsPerMin int

	// HealthChecksPerMin is the number of health checks allowed per minute per IP.
	HealthChecksPerMin int
}

// DefaultConfig returns the default rate limiting configuration.
func DefaultConfig() Config {
	return Config{
		TokenFailuresPerMin:  10,
		RequestsPerMin:       120,
		BookingSubmitsPerMin: 10,
		HealthChecksPerMin:   30,
	}
}

// Limiter implements token bucket rate limiting with support for multiple
// limit types.
type Limiter struct {
	storage *Storage
	config  Config
	mu      sync.Mutex
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		storage: NewStorage(),
		config:  config,
	}
}

// Allow checks if a request should be allowed based on the rate limit.
// It returns true if allowed, false if rate limited, and the number of
// seconds the caller should wait before retrying.
func (l *Limiter) Allow(key string, limitType LimitType) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.storage.Get(key)
	if bucket == nil {
		bucket = l.newBucket(limitType)
		l.storage.Set(key, bucket)
	}

	now := time.Now()
	elapsed := now.Sub(bucket.LastRefill).Seconds()
	bucket.Tokens += elapsed * bucket.RefillRate
	if bucket.Tokens > bucket.Capacity {
		bucket.Tokens = bucket.Capacity
	}
	bucket.LastRefill = now

	if bucket.Tokens >= 1.0 {
		bucket.Tokens -= 1.0
		l.storage.Set(key, bucket)
		return true, 0
	}

	tokensNeeded := 1.0 - bucket.Tokens
	retrySeconds := int(tokensNeeded / bucket.RefillRate)
	if retrySeconds < 1 {
		retrySeconds = 1
	}
	return false, retrySeconds
}

// perMinute returns the configured budget for the limit type.
func (l *Limiter) perMinute(limitType LimitType) int {
	switch limitType {
	case LimitTypeTokenLookupFailure:
		return l.config.TokenFailuresPerMin
	case LimitTypeBookingSubmit:
		return l.config.BookingSubmitsPerMin
	case LimitTypeHealthCheck:
		return l.config.HealthChecksPerMin
	default:
		return l.config.RequestsPerMin
	}
}

// newBucket creates a full token bucket sized for the limit type.
func (l *Limiter) newBucket(limitType LimitType) *Bucket {
	capacity := float64(l.perMinute(limitType))
	return &Bucket{
		Tokens:     capacity,
		LastRefill: time.Now(),
		Capacity:   capacity,
		RefillRate: capacity / 60.0,
	}
}

// Peek reports the tokens currently available for the key without consuming
// any. A key with no bucket yet has its full budget. Refill is applied on
// read so a blocked caller becomes unblocked as the bucket recovers.
func (l *Limiter) Peek(key string, limitType LimitType) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.storage.Get(key)
	if bucket == nil {
		return float64(l.perMinute(limitType))
	}

	tokens := bucket.Tokens + time.Since(bucket.LastRefill).Seconds()*bucket.RefillRate
	if tokens > bucket.Capacity {
		tokens = bucket.Capacity
	}
	return tokens
}

// BuildKey creates a rate limit key from identifier and limit type.
func BuildKey(identifier string, limitType LimitType) string {
	return fmt.Sprintf("%s:%s", limitType, identifier)
}

// Stop gracefully stops the limiter and cleans up resources.
func (l *Limiter) Stop() {
	l.storage.Stop()
}

// GetStorage returns the underlying storage (for testing).
func (l *Limiter) GetStorage() *Storage {
	return l.storage
}
