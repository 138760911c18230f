package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	_ "modernc.org/sqlite"

	"github.com/sempaphie/FSMappointment/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func newTenantService(t *testing.T) (*TenantService, *sql.DB) {
	t.Helper()
	core, _ := observer.New(zap.InfoLevel)
	db := newTestDB(t)
	return NewTenantService(db, zap.New(core)), db
}

func validCreateRequest() *models.TenantCreateRequest {
	return &models.TenantCreateRequest{
		AccountID:           "acct1",
		CompanyID:           "comp1",
		AccountName:         "ACME Group",
		CompanyName:         "ACME Services",
		Cluster:             "https://eu.coresuite.com",
		ContactCompanyName:  "ACME Field Ops",
		ContactFullName:     "Dana Weber",
		ContactEmailAddress: "dana@acme.example",
		ClientID:            "client-abc",
		ClientSecret:        "secret-xyz",
	}
}

func TestCreateTenantAndValidate(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	tenant, err := svc.CreateTenant(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}
	if tenant.TenantID != "acct1_comp1" {
		t.Fatalf("unexpected tenant id %q", tenant.TenantID)
	}
	if tenant.ClientSecret != "" {
		t.Fatal("create response must not contain the client secret")
	}

	window := tenant.ValidTo.Sub(tenant.ValidFrom)
	if window < 13*24*time.Hour || window > 15*24*time.Hour {
		t.Fatalf("trial window = %v, want ~14 days", window)
	}

	result, err := svc.ValidateTenant(context.Background(), "acct1", "comp1")
	if err != nil {
		t.Fatalf("ValidateTenant failed: %v", err)
	}
	if !result.IsValid || result.Status != models.ValidationValid {
		t.Fatalf("expected VALID, got %+v", result)
	}
	if result.Tenant == nil || result.Tenant.ClientSecret != "" {
		t.Fatal("validation result tenant must be sanitized")
	}
}

func TestCreateTenantDuplicate(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	if _, err := svc.CreateTenant(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.CreateTenant(context.Background(), validCreateRequest())
	if err != models.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateTenantMissingFields(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	req := validCreateRequest()
	req.ClientSecret = ""
	req.CompanyName = ""
	req.AccountName = ""
	req.ContactCompanyName = ""

	_, err := svc.CreateTenant(context.Background(), req)
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.MissingFields) != 4 {
		t.Fatalf("missing fields = %v", vErr.MissingFields)
	}
	for _, field := range []string{"accountName", "contactCompanyName"} {
		found := false
		for _, missing := range vErr.MissingFields {
			if missing == field {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing fields %v do not name %s", vErr.MissingFields, field)
		}
	}
}

func TestValidateTenantNotFound(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	result, err := svc.ValidateTenant(context.Background(), "nobody", "nothing")
	if err != nil {
		t.Fatalf("ValidateTenant failed: %v", err)
	}
	if result.IsValid || result.Status != models.ValidationNotFound {
		t.Fatalf("expected NOT_FOUND, got %+v", result)
	}
	if result.Tenant != nil {
		t.Fatal("NOT_FOUND must not carry a tenant")
	}
}

func TestValidateTenantInactiveBeforeExpired(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	if _, err := svc.CreateTenant(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Expire the license and deactivate; INACTIVE must win.
	past := time.Now().AddDate(0, 0, -1)
	if _, err := db.Exec(`UPDATE tenants SET valid_to = ?, is_active = 0 WHERE tenant_id = ?`, past, "acct1_comp1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	result, err := svc.ValidateTenant(context.Background(), "acct1", "comp1")
	if err != nil {
		t.Fatalf("ValidateTenant failed: %v", err)
	}
	if result.Status != models.ValidationInactive {
		t.Fatalf("expected INACTIVE, got %s", result.Status)
	}
}

func TestValidateTenantExpired(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	if _, err := svc.CreateTenant(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	past := time.Now().AddDate(0, 0, -1)
	if _, err := db.Exec(`UPDATE tenants SET valid_to = ? WHERE tenant_id = ?`, past, "acct1_comp1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	result, err := svc.ValidateTenant(context.Background(), "acct1", "comp1")
	if err != nil {
		t.Fatalf("ValidateTenant failed: %v", err)
	}
	if result.Status != models.ValidationExpired {
		t.Fatalf("expected EXPIRED, got %s", result.Status)
	}
	if result.Tenant == nil {
		t.Fatal("EXPIRED must carry the sanitized tenant for renewal info")
	}
	if result.Tenant.ClientSecret != "" {
		t.Fatal("EXPIRED tenant must be sanitized")
	}
}

func TestUpdateTenant(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	if _, err := svc.CreateTenant(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "ACME International"
	phone := "+49 123 456"
	updated, err := svc.UpdateTenant(context.Background(), "acct1_comp1", &models.TenantUpdateRequest{
		CompanyName:  &name,
		ContactPhone: &phone,
	})
	if err != nil {
		t.Fatalf("UpdateTenant failed: %v", err)
	}
	if updated.CompanyName != name || updated.ContactPhone != phone {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.ClientSecret != "" {
		t.Fatal("update response must not contain the client secret")
	}

	if _, err := svc.UpdateTenant(context.Background(), "missing_tenant", &models.TenantUpdateRequest{CompanyName: &name}); err != models.ErrTenantNotFound {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestRenewLicenseExtendsFromExpiry(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	created, err := svc.CreateTenant(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	renewed, err := svc.RenewLicense(context.Background(), created.TenantID, 30)
	if err != nil {
		t.Fatalf("RenewLicense failed: %v", err)
	}

	want := created.ValidTo.AddDate(0, 0, 30)
	if diff := renewed.ValidTo.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("renewed validTo = %v, want ~%v", renewed.ValidTo, want)
	}
}

func TestSetActiveReactivatesTenant(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	if _, err := svc.CreateTenant(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.SetActive(context.Background(), "acct1_comp1", false); err != nil {
		t.Fatalf("SetActive(false) failed: %v", err)
	}
	result, err := svc.ValidateTenant(context.Background(), "acct1", "comp1")
	if err != nil {
		t.Fatalf("ValidateTenant failed: %v", err)
	}
	if result.Status != models.ValidationInactive {
		t.Fatalf("expected INACTIVE after deactivation, got %s", result.Status)
	}

	if err := svc.SetActive(context.Background(), "acct1_comp1", true); err != nil {
		t.Fatalf("SetActive(true) failed: %v", err)
	}
	result, err = svc.ValidateTenant(context.Background(), "acct1", "comp1")
	if err != nil {
		t.Fatalf("ValidateTenant failed: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected VALID after reactivation, got %+v", result)
	}

	if err := svc.SetActive(context.Background(), "missing_tenant", true); err != models.ErrTenantNotFound {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestGetTenantCredentialsKeepsSecret(t *testing.T) {
	svc, db := newTenantService(t)
	defer db.Close()

	if _, err := svc.CreateTenant(context.Background(), validCreateRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	full, err := svc.GetTenantCredentials(context.Background(), "acct1_comp1")
	if err != nil {
		t.Fatalf("GetTenantCredentials failed: %v", err)
	}
	if full.ClientSecret != "secret-xyz" {
		t.Fatal("credentials path must return the stored secret")
	}

	sanitized, err := svc.GetTenant(context.Background(), "acct1_comp1")
	if err != nil {
		t.Fatalf("GetTenant failed: %v", err)
	}
	if sanitized.ClientSecret != "" {
		t.Fatal("GetTenant must sanitize the secret")
	}
}
