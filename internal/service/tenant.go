package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/logging"
	"github.com/sempaphie/FSMappointment/internal/metrics"
	"github.com/sempaphie/FSMappointment/internal/util"
	"github.com/sempaphie/FSMappointment/models"
)

// trialDays is the license window granted to a newly onboarded tenant.
const trialDays = 14

// TenantService provides tenant onboarding, validation, and license
// management.
//
// Every read path returning a tenant to an API caller goes through
// models.Tenant.Sanitized so the client secret never leaves the service
// layer. Credentials for outbound OAuth are fetched separately via
// GetTenantCredentials, which only internal callers use.
type TenantService struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTenantService creates a new TenantService.
func NewTenantService(db *sql.DB, logger *zap.Logger) *TenantService {
	return &TenantService{
		db:     db,
		logger: logger,
	}
}

// ValidateTenant runs the license decision chain for the given identity.
//
// The order is fixed: a missing record is NOT_FOUND, an administratively
// disabled record is INACTIVE, a record past its license window is EXPIRED,
// everything else is VALID. A storage failure yields an ERROR result and a
// non-nil error; callers must not treat ERROR as NOT_FOUND.
func (s *TenantService) ValidateTenant(ctx context.Context, accountID, companyID string) (*models.ValidationResult, error) {
	tenantID := models.TenantID(accountID, companyID)

	tenant, err := s.getTenant(ctx, tenantID)
	if err == models.ErrTenantNotFound {
		return &models.ValidationResult{
			IsValid: false,
			Status:  models.ValidationNotFound,
			Message: "No tenant registered for this account and company. Setup is required.",
		}, nil
	}
	if err != nil {
		s.logger.Error("tenant validation failed",
			zap.String(logging.FieldTenantID, tenantID),
			zap.Error(err),
		)
		return &models.ValidationResult{
			IsValid: false,
			Status:  models.ValidationStatusError,
			Message: "Tenant validation failed. Please try again.",
		}, err
	}

	if !tenant.IsActive {
		return &models.ValidationResult{
			IsValid: false,
			Status:  models.ValidationInactive,
			Message: "This tenant is deactivated. Contact support to reactivate.",
		}, nil
	}

	if time.Now().After(tenant.ValidTo) {
		return &models.ValidationResult{
			IsValid: false,
			Status:  models.ValidationExpired,
			Message: "The license for this tenant has expired.",
			Tenant:  tenant.Sanitized(),
		}, nil
	}

	return &models.ValidationResult{
		IsValid: true,
		Status:  models.ValidationValid,
		Tenant:  tenant.Sanitized(),
	}, nil
}

// CreateTenant onboards a new tenant with a trial license window.
//
// The tenant ID is derived from the identity fields and the insert is
// conditional: a second create for the same identity returns
// models.ErrAlreadyExists without touching the existing record.
func (s *TenantService) CreateTenant(ctx context.Context, req *models.TenantCreateRequest) (*models.Tenant, error) {
	missing := util.RequireFields(map[string]string{
		"accountId":           req.AccountID,
		"companyId":           req.CompanyID,
		"accountName":         req.AccountName,
		"companyName":         req.CompanyName,
		"cluster":             req.Cluster,
		"contactCompanyName":  req.ContactCompanyName,
		"contactFullName":     req.ContactFullName,
		"contactEmailAddress": req.ContactEmailAddress,
		"clientId":            req.ClientID,
		"clientSecret":        req.ClientSecret,
	})
	if len(missing) > 0 {
		return nil, models.NewValidationError(missing...)
	}
	if err := util.ValidateEmail(req.ContactEmailAddress); err != nil {
		return nil, models.NewValidationError("contactEmailAddress")
	}
	if err := util.ValidateURL(req.Cluster); err != nil {
		return nil, models.NewValidationError("cluster")
	}

	now := time.Now().UTC()
	tenant := &models.Tenant{
		TenantID:            models.TenantID(req.AccountID, req.CompanyID),
		AccountID:           req.AccountID,
		AccountName:         req.AccountName,
		CompanyID:           req.CompanyID,
		CompanyName:         req.CompanyName,
		Cluster:             strings.TrimRight(req.Cluster, "/"),
		ContactCompanyName:  req.ContactCompanyName,
		ContactFullName:     req.ContactFullName,
		ContactPhone:        req.ContactPhone,
		ContactEmailAddress: req.ContactEmailAddress,
		ClientID:            req.ClientID,
		ClientSecret:        req.ClientSecret,
		ValidFrom:           now,
		ValidTo:             now.AddDate(0, 0, trialDays),
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (
			tenant_id, account_id, account_name, company_id, company_name,
			cluster, contact_company_name, contact_full_name, contact_phone,
			contact_email, client_id, client_secret, valid_from, valid_to,
			is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tenant.TenantID, tenant.AccountID, tenant.AccountName,
		tenant.CompanyID, tenant.CompanyName, tenant.Cluster,
		tenant.ContactCompanyName, tenant.ContactFullName, tenant.ContactPhone,
		tenant.ContactEmailAddress, tenant.ClientID, tenant.ClientSecret,
		tenant.ValidFrom, tenant.ValidTo, 1, tenant.CreatedAt, tenant.UpdatedAt,
	)
	metrics.ObserveQuery("tenant_create", start, err)
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, models.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	s.logger.Info("tenant created",
		zap.String(logging.FieldTenantID, tenant.TenantID),
		zap.String(logging.FieldAccountID, tenant.AccountID),
		zap.String(logging.FieldCompanyID, tenant.CompanyID),
	)

	return tenant.Sanitized(), nil
}

// GetTenant returns the sanitized tenant record.
func (s *TenantService) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return tenant.Sanitized(), nil
}

// GetTenantCredentials returns the full tenant record including the client
// secret. Only the outbound FSM client may call this; the result must never
// be serialized into an API response.
func (s *TenantService) GetTenantCredentials(ctx context.Context, tenantID string) (*models.Tenant, error) {
	return s.getTenant(ctx, tenantID)
}

// UpdateTenant applies the non-nil fields of the update request. Identity
// fields and the client secret cannot be changed through this path.
func (s *TenantService) UpdateTenant(ctx context.Context, tenantID string, req *models.TenantUpdateRequest) (*models.Tenant, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.AccountName != nil {
		tenant.AccountName = *req.AccountName
	}
	if req.CompanyName != nil {
		tenant.CompanyName = *req.CompanyName
	}
	if req.Cluster != nil {
		if err := util.ValidateURL(*req.Cluster); err != nil {
			return nil, models.NewValidationError("cluster")
		}
		tenant.Cluster = strings.TrimRight(*req.Cluster, "/")
	}
	if req.ContactCompanyName != nil {
		tenant.ContactCompanyName = *req.ContactCompanyName
	}
	if req.ContactFullName != nil {
		tenant.ContactFullName = *req.ContactFullName
	}
	if req.ContactPhone != nil {
		tenant.ContactPhone = *req.ContactPhone
	}
	if req.ContactEmailAddress != nil {
		if err := util.ValidateEmail(*req.ContactEmailAddress); err != nil {
			return nil, models.NewValidationError("contactEmailAddress")
		}
		tenant.ContactEmailAddress = *req.ContactEmailAddress
	}
	if req.ClientID != nil {
		tenant.ClientID = *req.ClientID
	}
	tenant.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE tenants
		SET account_name = ?, company_name = ?, cluster = ?,
		    contact_company_name = ?, contact_full_name = ?,
		    contact_phone = ?, contact_email = ?, client_id = ?,
		    updated_at = ?
		WHERE tenant_id = ?
	`,
		tenant.AccountName, tenant.CompanyName, tenant.Cluster,
		tenant.ContactCompanyName, tenant.ContactFullName,
		tenant.ContactPhone, tenant.ContactEmailAddress, tenant.ClientID,
		tenant.UpdatedAt, tenantID,
	)
	metrics.ObserveQuery("tenant_update", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check tenant update result: %w", err)
	}
	if rows == 0 {
		return nil, models.ErrTenantNotFound
	}

	return tenant.Sanitized(), nil
}

// RenewLicense extends the tenant's license window by the given number of
// days, counted from the later of now and the current expiry.
func (s *TenantService) RenewLicense(ctx context.Context, tenantID string, days int) (*models.Tenant, error) {
	if days <= 0 {
		return nil, models.NewValidationError("days")
	}

	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	base := tenant.ValidTo
	if base.Before(now) {
		base = now
	}
	tenant.ValidTo = base.AddDate(0, 0, days)
	tenant.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		UPDATE tenants SET valid_to = ?, updated_at = ? WHERE tenant_id = ?
	`, tenant.ValidTo, tenant.UpdatedAt, tenantID); err != nil {
		return nil, fmt.Errorf("failed to renew license: %w", err)
	}

	s.logger.Info("license renewed",
		zap.String(logging.FieldTenantID, tenantID),
		zap.Time("validTo", tenant.ValidTo),
	)

	return tenant.Sanitized(), nil
}

// SetActive flips the administrative activation flag.
func (s *TenantService) SetActive(ctx context.Context, tenantID string, active bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tenants SET is_active = ?, updated_at = ? WHERE tenant_id = ?
	`, boolToInt(active), time.Now().UTC(), tenantID)
	if err != nil {
		return fmt.Errorf("failed to set tenant active flag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check activation result: %w", err)
	}
	if rows == 0 {
		return models.ErrTenantNotFound
	}
	return nil
}

func (s *TenantService) getTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	query := `
		SELECT tenant_id, account_id, account_name, company_id, company_name,
		       cluster, contact_company_name, contact_full_name, contact_phone,
		       contact_email, client_id, client_secret, valid_from, valid_to,
		       is_active, created_at, updated_at
		FROM tenants
		WHERE tenant_id = ?
		LIMIT 1
	`

	var t models.Tenant
	var isActive int
	start := time.Now()
	err := s.db.QueryRowContext(ctx, query, tenantID).Scan(
		&t.TenantID, &t.AccountID, &t.AccountName, &t.CompanyID, &t.CompanyName,
		&t.Cluster, &t.ContactCompanyName, &t.ContactFullName, &t.ContactPhone,
		&t.ContactEmailAddress, &t.ClientID, &t.ClientSecret,
		&t.ValidFrom, &t.ValidTo, &isActive, &t.CreatedAt, &t.UpdatedAt,
	)
	metrics.ObserveQuery("tenant_get", start, err)
	if err == sql.ErrNoRows {
		return nil, models.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	t.IsActive = isActive != 0
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	// SQLite constraint errors include "UNIQUE constraint failed"
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
