package models

import "time"

// TenantID derives the primary key for a tenant from its host-supplied
// identity. The derivation is fixed: accountId + "_" + companyId. A tenant
// ID is immutable once the record is created.
func TenantID(accountID, companyID string) string {
	return accountID + "_" + companyID
}

// Tenant represents one customer organization's isolated configuration,
// created during onboarding and validated on every dashboard load.
//
// ClientSecret is the only sensitive field: it must be stripped by
// Sanitized() before a record crosses any API boundary, and must never
// appear in logs or error payloads.
type Tenant struct {
	// TenantID is the primary key, derived as accountId + "_" + companyId.
	TenantID string `json:"tenantId"`

	// Identity supplied by the host shell at setup time.
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`

	// Cluster is the FSM datacenter base URL for this account
	// (e.g., "https://eu.coresuite.com"), used for OAuth token requests.
	Cluster string `json:"cluster"`

	// Onboarding contact.
	ContactCompanyName  string `json:"contactCompanyName"`
	ContactFullName     string `json:"contactFullName"`
	ContactPhone        string `json:"contactPhone,omitempty"`
	ContactEmailAddress string `json:"contactEmailAddress"`

	// OAuth client credentials for the FSM Data API.
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret,omitempty"`

	// License window. Invariant: ValidFrom <= ValidTo.
	ValidFrom time.Time `json:"validFrom"`
	ValidTo   time.Time `json:"validTo"`

	IsActive bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sanitized returns a copy of the tenant with the client secret removed.
// Every read path returning a tenant to a caller must go through this.
func (t *Tenant) Sanitized() *Tenant {
	if t == nil {
		return nil
	}
	clean := *t
	clean.ClientSecret = ""
	return &clean
}

// ValidationStatus is the outcome of validating a tenant's license state.
type ValidationStatus string

const (
	// ValidationNotFound means no tenant record exists; setup is required.
	ValidationNotFound ValidationStatus = "NOT_FOUND"

	// ValidationInactive means the tenant is administratively disabled.
	ValidationInactive ValidationStatus = "INACTIVE"

	// ValidationExpired means the license window has passed. The sanitized
	// tenant record accompanies this result so the UI can show renewal info.
	ValidationExpired ValidationStatus = "EXPIRED"

	// ValidationValid means the tenant exists, is active, and is licensed.
	ValidationValid ValidationStatus = "VALID"

	// ValidationStatusError means the validation itself failed (storage
	// unreachable). Callers must not conflate this with NOT_FOUND.
	ValidationStatusError ValidationStatus = "ERROR"
)

// ValidationResult is the outcome of the tenant validation decision chain.
// Exactly one status applies; Tenant is present for EXPIRED and VALID.
type ValidationResult struct {
	IsValid bool             `json:"isValid"`
	Status  ValidationStatus `json:"error,omitempty"`
	Message string           `json:"message,omitempty"`
	Tenant  *Tenant          `json:"tenant,omitempty"`
}

// TenantCreateRequest is the request body for POST /tenant. Identity fields
// come from the host context; contact and credential fields are user input.
type TenantCreateRequest struct {
	AccountID   string `json:"accountId"`
	CompanyID   string `json:"companyId"`
	AccountName string `json:"accountName"`
	CompanyName string `json:"companyName"`
	Cluster     string `json:"cluster"`

	ContactCompanyName  string `json:"contactCompanyName"`
	ContactFullName     string `json:"contactFullName"`
	ContactPhone        string `json:"contactPhone,omitempty"`
	ContactEmailAddress string `json:"contactEmailAddress"`

	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// TenantUpdateRequest is the request body for PUT /tenant/:tenantId. Only
// the listed fields may change; identity fields and the client secret are
// never applied from an update (the secret requires a dedicated rotation
// flow that does not exist yet).
type TenantUpdateRequest struct {
	AccountName         *string `json:"accountName,omitempty"`
	CompanyName         *string `json:"companyName,omitempty"`
	Cluster             *string `json:"cluster,omitempty"`
	ContactCompanyName  *string `json:"contactCompanyName,omitempty"`
	ContactFullName     *string `json:"contactFullName,omitempty"`
	ContactPhone        *string `json:"contactPhone,omitempty"`
	ContactEmailAddress *string `json:"contactEmailAddress,omitempty"`
	ClientID            *string `json:"clientId,omitempty"`
}

// TenantResponse wraps a sanitized tenant for create/update responses.
type TenantResponse struct {
	Success bool    `json:"success"`
	Tenant  *Tenant `json:"tenant"`
	Message string  `json:"message,omitempty"`
}
