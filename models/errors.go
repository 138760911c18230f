package models

import "errors"

// Common error types used throughout the appointment booking service.
// These errors provide semantic meaning and enable consistent error handling
// across different layers (API, service, database).

var (
	// ErrNotFound indicates the requested resource does not exist.
	// HTTP equivalent: 404 Not Found
	ErrNotFound = errors.New("resource not found")

	// ErrTenantNotFound indicates no tenant record exists for the derived
	// tenant ID. Callers must route to the setup flow, not an error banner.
	// HTTP equivalent: 404 Not Found
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInstanceNotFound indicates the requested appointment instance does
	// not exist, including token lookups that resolve to nothing.
	// HTTP equivalent: 404 Not Found
	ErrInstanceNotFound = errors.New("appointment instance not found")

	// ErrTenantInactive indicates the tenant record exists but has been
	// administratively disabled.
	// HTTP equivalent: 403 Forbidden
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrLicenseExpired indicates the tenant's license window has passed.
	// This is an expected, actionable outcome with a dedicated UI state.
	// HTTP equivalent: 403 Forbidden
	ErrLicenseExpired = errors.New("tenant license has expired")

	// ErrInstanceExpired indicates the appointment instance exists but is
	// past its validity window. The record may still be physically present
	// until the TTL sweeper removes it.
	// HTTP equivalent: 410 Gone
	ErrInstanceExpired = errors.New("appointment instance has expired")

	// ErrAlreadyExists indicates a uniqueness violation on create, such as
	// a second tenant setup for the same account/company pair.
	// HTTP equivalent: 409 Conflict
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrValidationFailed indicates the request body or parameters are
	// missing required fields or are malformed.
	// HTTP equivalent: 400 Bad Request
	ErrValidationFailed = errors.New("request validation failed")

	// ErrBookingRequired indicates a dispatcher response was attempted
	// against an instance that has no customer booking yet.
	// HTTP equivalent: 409 Conflict
	ErrBookingRequired = errors.New("instance has no customer booking to respond to")

	// ErrUpstream indicates a failure talking to the external FSM API
	// (OAuth token endpoint or Data API) or the host bridge.
	// HTTP equivalent: 502 Bad Gateway
	ErrUpstream = errors.New("upstream FSM request failed")

	// ErrUpstreamDecode indicates the FSM Data API responded with a payload
	// that matched none of the known response shapes. Distinct from
	// ErrUpstream so callers never mistake a decode failure for an empty
	// result.
	// HTTP equivalent: 502 Bad Gateway
	ErrUpstreamDecode = errors.New("unrecognized FSM response shape")

	// ErrStorage indicates the persistence layer is unreachable or failed.
	// Callers must never conflate this with ErrNotFound.
	// HTTP equivalent: 500 Internal Server Error
	ErrStorage = errors.New("storage operation failed")

	// ErrRateLimitExceeded indicates too many requests from this client.
	// HTTP equivalent: 429 Too Many Requests
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInternalError indicates an unexpected server-side error.
	// HTTP equivalent: 500 Internal Server Error
	ErrInternalError = errors.New("internal server error")
)

// ValidationError carries the field names that failed request validation.
// It wraps ErrValidationFailed so errors.Is checks still work at the
// handler boundary while the missing fields stay available for the response.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields"
}

// Unwrap lets errors.Is(err, ErrValidationFailed) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a ValidationError for the given fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{MissingFields: fields}
}
