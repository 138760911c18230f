package util

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ValidateUUID checks if a string is a valid UUID format.
//
// Example:
//
//	if err := util.ValidateUUID(instanceID); err != nil {
//	    return models.ErrValidationFailed
//	}
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID format: %w", err)
	}
	return nil
}

// ValidateEmail checks if a string is a syntactically valid email address.
//
// Example:
//
//	if err := util.ValidateEmail(booking.CustomerEmail); err != nil {
//	    return models.NewValidationError("customerEmail")
//	}
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	// mail.ParseAddress accepts display names; only the bare form is valid here.
	if addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateURL checks that a string is an absolute http or https URL.
//
// Example:
//
//	if err := util.ValidateURL(cfg.FSMClusterURL); err != nil {
//	    return fmt.Errorf("invalid cluster URL: %w", err)
//	}
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL is missing a host")
	}
	return nil
}

// RequireFields returns the names of fields whose values are empty after
// trimming whitespace. The fields map preserves insertion independence, so
// callers pass field name to value pairs.
//
// Example:
//
//	missing := util.RequireFields(map[string]string{
//	    "accountId": req.AccountID,
//	    "companyId": req.CompanyID,
//	})
//	if len(missing) > 0 {
//	    return models.NewValidationError(missing...)
//	}
func RequireFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidatePortRange checks if a port number is in valid range (1-65535).
func ValidatePortRange(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
