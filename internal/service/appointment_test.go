package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	_ "modernc.org/sqlite"

	"github.com/sempaphie/FSMappointment/models"
)

const testBaseURL = "https://booking.example.com"

func newAppointmentService(t *testing.T) (*AppointmentService, *sql.DB) {
	t.Helper()
	core, _ := observer.New(zap.InfoLevel)
	db := newTestDB(t)
	return NewAppointmentService(db, zap.New(core), testBaseURL), db
}

func createOne(t *testing.T, svc *AppointmentService, tenantID, activityID string) models.AppointmentInstance {
	t.Helper()
	result, err := svc.CreateInstances(context.Background(), tenantID, &models.CreateInstancesRequest{
		Activities: []models.Activity{{
			ID:      activityID,
			Subject: "Heating maintenance",
			Object:  &models.ActivityObject{ObjectID: "SC-20250001234", ObjectType: "SERVICECALL"},
		}},
	})
	if err != nil {
		t.Fatalf("CreateInstances failed: %v", err)
	}
	if result.TotalCreated != 1 {
		t.Fatalf("expected one instance, got %+v", result)
	}
	return result.Instances[0]
}

func TestCreateInstances(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	instance := createOne(t, svc, "acct1_comp1", "activity-1")

	if instance.Status != models.InstancePending {
		t.Fatalf("new instance status = %s, want pending", instance.Status)
	}
	if !strings.HasPrefix(instance.CustomerURL, testBaseURL+"/booking/") {
		t.Fatalf("unexpected customer URL %q", instance.CustomerURL)
	}
	if !strings.HasSuffix(instance.CustomerURL, instance.CustomerAccessToken) {
		t.Fatal("customer URL must embed the access token")
	}
	if instance.TTL != instance.ValidUntil.Unix() {
		t.Fatal("ttl must mirror validUntil as epoch seconds")
	}
	window := instance.ValidUntil.Sub(instance.ValidFrom)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Fatalf("validity window = %v, want ~30 days", window)
	}
	if instance.FSMActivity.ServiceCallNumber != "0001234" {
		t.Fatalf("service call number = %q", instance.FSMActivity.ServiceCallNumber)
	}
}

func TestCreateInstancesFromBareIDs(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	result, err := svc.CreateInstances(context.Background(), "t1", &models.CreateInstancesRequest{
		ActivityIDs: []string{"a1", "a2", "a1"},
	})
	if err != nil {
		t.Fatalf("CreateInstances failed: %v", err)
	}
	if result.TotalCreated != 2 {
		t.Fatalf("duplicate IDs must collapse, got %d instances", result.TotalCreated)
	}
	if len(result.CustomerURLs) != 2 {
		t.Fatalf("expected 2 customer URLs, got %d", len(result.CustomerURLs))
	}
}

func TestCreateInstancesEmptyRequest(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	_, err := svc.CreateInstances(context.Background(), "t1", &models.CreateInstancesRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty request")
	}
}

func TestGetByTokenActivatesPending(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")

	got, err := svc.GetByToken(context.Background(), created.CustomerAccessToken)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got.Status != models.InstanceActive {
		t.Fatalf("first read status = %s, want active", got.Status)
	}

	// The transition is persisted.
	again, err := svc.GetByToken(context.Background(), created.CustomerAccessToken)
	if err != nil {
		t.Fatalf("second GetByToken failed: %v", err)
	}
	if again.Status != models.InstanceActive {
		t.Fatalf("persisted status = %s, want active", again.Status)
	}
}

func TestGetByTokenUnknown(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	if _, err := svc.GetByToken(context.Background(), "no-such-token"); err != models.ErrInstanceNotFound {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}
}

func TestGetByTokenExpired(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")
	expireInstance(t, db, created.TenantID, created.InstanceID)

	// The expired instance is inaccessible through the customer token.
	if _, err := svc.GetByToken(context.Background(), created.CustomerAccessToken); err != models.ErrInstanceExpired {
		t.Fatalf("expected ErrInstanceExpired, got %v", err)
	}

	// The failed read does not rewrite the stored record; the sweeper owns
	// deletion.
	var stored string
	if err := db.QueryRow(`SELECT status FROM appointment_instances WHERE instance_id = ?`, created.InstanceID).Scan(&stored); err != nil {
		t.Fatalf("read stored status: %v", err)
	}
	if stored == string(models.InstanceExpired) {
		t.Fatal("stored status must not be rewritten on read")
	}
}

func TestUpdateCustomerBookingSubmittedVsRequested(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")

	updated, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName:  "Kim Tan",
		CustomerEmail: "kim@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateCustomerBooking failed: %v", err)
	}
	if updated.Status != models.InstanceSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", updated.Status)
	}
	if updated.CustomerBooking.Status != models.BookingSubmitted {
		t.Fatalf("booking status = %s", updated.CustomerBooking.Status)
	}

	when := time.Now().AddDate(0, 0, 3)
	requested, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName:      "Kim Tan",
		CustomerEmail:     "kim@example.com",
		RequestedDateTime: &when,
	})
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if requested.Status != models.InstanceRequested {
		t.Fatalf("status = %s, want REQUESTED", requested.Status)
	}
	if !requested.CustomerBooking.SubmittedAt.Equal(updated.CustomerBooking.SubmittedAt) {
		t.Fatal("resubmission must preserve the original submission time")
	}
}

func TestUpdateCustomerBookingValidation(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")

	if _, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName: "No Email",
	}); err == nil {
		t.Fatal("expected validation error for missing email")
	}

	if _, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName:  "Bad Email",
		CustomerEmail: "not-an-email",
	}); err == nil {
		t.Fatal("expected validation error for malformed email")
	}
}

func TestUpdateCustomerBookingExpired(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")
	expireInstance(t, db, created.TenantID, created.InstanceID)

	_, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName:  "Too Late",
		CustomerEmail: "late@example.com",
	})
	if err != models.ErrInstanceExpired {
		t.Fatalf("expected ErrInstanceExpired, got %v", err)
	}
}

func TestRespondToBooking(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")

	// Responding before the customer submits is rejected.
	_, err := svc.RespondToBooking(context.Background(), created.TenantID, created.InstanceID, &models.RespondToBookingRequest{
		Response:    models.ResponseApprove,
		RespondedBy: "dispatcher-1",
	})
	if err != models.ErrBookingRequired {
		t.Fatalf("expected ErrBookingRequired, got %v", err)
	}

	if _, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName:  "Kim Tan",
		CustomerEmail: "kim@example.com",
	}); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	approved, err := svc.RespondToBooking(context.Background(), created.TenantID, created.InstanceID, &models.RespondToBookingRequest{
		Response:    models.ResponseApprove,
		Message:     "Technician will arrive in the morning window.",
		RespondedBy: "dispatcher-1",
	})
	if err != nil {
		t.Fatalf("RespondToBooking failed: %v", err)
	}
	if approved.Status != models.InstanceConfirmed {
		t.Fatalf("status = %s, want confirmed", approved.Status)
	}
	if approved.CustomerBooking.Status != models.BookingApproved {
		t.Fatalf("booking status = %s, want approved", approved.CustomerBooking.Status)
	}
	if approved.FSMResponse == nil || approved.FSMResponse.RespondedBy != "dispatcher-1" {
		t.Fatalf("dispatcher response not recorded: %+v", approved.FSMResponse)
	}
}

func TestRespondToBookingRejectAndInvalid(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	created := createOne(t, svc, "t1", "a1")
	if _, err := svc.UpdateCustomerBooking(context.Background(), created.CustomerAccessToken, &models.UpdateBookingRequest{
		CustomerName:  "Kim Tan",
		CustomerEmail: "kim@example.com",
	}); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := svc.RespondToBooking(context.Background(), created.TenantID, created.InstanceID, &models.RespondToBookingRequest{
		Response: "maybe",
	}); err == nil {
		t.Fatal("expected validation error for unknown decision")
	}

	rejected, err := svc.RespondToBooking(context.Background(), created.TenantID, created.InstanceID, &models.RespondToBookingRequest{
		Response:    models.ResponseReject,
		RespondedBy: "dispatcher-2",
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != models.InstanceRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
}

func TestListInstancesAppliesExpiry(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	createOne(t, svc, "t1", "a1")
	stale := createOne(t, svc, "t1", "a2")
	createOne(t, svc, "other", "a3")
	expireInstance(t, db, stale.TenantID, stale.InstanceID)

	instances, err := svc.ListInstances(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ListInstances failed: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances for tenant, got %d", len(instances))
	}

	statuses := map[string]models.InstanceStatus{}
	for _, i := range instances {
		statuses[i.InstanceID] = i.Status
	}
	if statuses[stale.InstanceID] != models.InstanceExpired {
		t.Fatalf("stale instance status = %s, want expired", statuses[stale.InstanceID])
	}
}

func TestDeleteExpired(t *testing.T) {
	svc, db := newAppointmentService(t)
	defer db.Close()

	keep := createOne(t, svc, "t1", "a1")
	gone := createOne(t, svc, "t1", "a2")
	expireInstance(t, db, gone.TenantID, gone.InstanceID)

	removed, err := svc.DeleteExpired(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	if _, err := svc.GetByToken(context.Background(), gone.CustomerAccessToken); err != models.ErrInstanceNotFound {
		t.Fatalf("expected swept instance to be gone, got %v", err)
	}
	if _, err := svc.GetByToken(context.Background(), keep.CustomerAccessToken); err != nil {
		t.Fatalf("live instance must survive the sweep: %v", err)
	}
}

func expireInstance(t *testing.T, db *sql.DB, tenantID, instanceID string) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	if _, err := db.Exec(`
		UPDATE appointment_instances
		SET valid_until = ?, ttl = ?
		WHERE tenant_id = ? AND instance_id = ?
	`, past, past.Unix(), tenantID, instanceID); err != nil {
		t.Fatalf("expire instance: %v", err)
	}
}
