package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/logging"
	"github.com/sempaphie/FSMappointment/internal/metrics"
	"github.com/sempaphie/FSMappointment/internal/util"
	"github.com/sempaphie/FSMappointment/models"
	"github.com/sempaphie/FSMappointment/pkg/token"
)

// instanceValidityDays is the lifetime of a customer booking link.
const instanceValidityDays = 30

// AppointmentService provides the appointment instance lifecycle: bulk
// creation from activities, token-based customer access, booking
// submission, and the dispatcher decision.
type AppointmentService struct {
	db      *sql.DB
	logger  *zap.Logger
	baseURL string
}

// NewAppointmentService creates a new AppointmentService. baseURL is the
// public origin used to build customer booking links.
func NewAppointmentService(db *sql.DB, logger *zap.Logger, baseURL string) *AppointmentService {
	return &AppointmentService{
		db:      db,
		logger:  logger,
		baseURL: baseURL,
	}
}

// CreateInstances creates one appointment instance per requested activity.
//
// Bulk creation is best effort: an activity whose instance cannot be
// written lands in the Failed list with a reason, and the remaining
// activities still get their instances. There is no rollback.
func (s *AppointmentService) CreateInstances(ctx context.Context, tenantID string, req *models.CreateInstancesRequest) (*models.CreateInstancesResult, error) {
	activities := mergeActivities(req)
	if len(activities) == 0 {
		return nil, models.NewValidationError("activityIds")
	}

	result := &models.CreateInstancesResult{}
	now := time.Now().UTC()

	for _, activity := range activities {
		instance, err := s.createInstance(ctx, tenantID, activity, now)
		if err != nil {
			s.logger.Warn("instance creation failed",
				zap.String(logging.FieldTenantID, tenantID),
				zap.String(logging.FieldActivityID, activity.ID),
				zap.Error(err),
			)
			metrics.InstanceOperations.WithLabelValues("create", "error").Inc()
			result.Failed = append(result.Failed, models.FailedActivity{
				ActivityID: activity.ID,
				Reason:     err.Error(),
			})
			continue
		}
		metrics.InstanceOperations.WithLabelValues("create", "success").Inc()
		result.Instances = append(result.Instances, *instance)
		result.CustomerURLs = append(result.CustomerURLs, instance.CustomerURL)
	}

	result.TotalCreated = len(result.Instances)
	return result, nil
}

func (s *AppointmentService) createInstance(ctx context.Context, tenantID string, activity models.Activity, now time.Time) (*models.AppointmentInstance, error) {
	accessToken, err := token.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	validUntil := now.AddDate(0, 0, instanceValidityDays)
	instance := &models.AppointmentInstance{
		TenantID:            tenantID,
		InstanceID:          uuid.New().String(),
		CustomerAccessToken: accessToken,
		CustomerURL:         s.baseURL + "/booking/" + accessToken,
		ValidFrom:           now,
		ValidUntil:          validUntil,
		TTL:                 validUntil.Unix(),
		Status:              models.InstancePending,
		CreatedAt:           now,
		UpdatedAt:           now,
		FSMActivity:         activity.Snapshot(),
	}

	snapshotJSON, err := json.Marshal(instance.FSMActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity snapshot: %w", err)
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO appointment_instances (
			tenant_id, instance_id, customer_access_token, customer_url,
			valid_from, valid_until, ttl, status, activity_id, fsm_activity,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		instance.TenantID, instance.InstanceID, instance.CustomerAccessToken,
		instance.CustomerURL, instance.ValidFrom, instance.ValidUntil,
		instance.TTL, string(instance.Status), activity.ID,
		string(snapshotJSON), instance.CreatedAt, instance.UpdatedAt,
	)
	metrics.ObserveQuery("instance_create", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert instance: %w", err)
	}

	return instance, nil
}

// ListInstances returns all appointment instances for a tenant, newest
// first. Instances past their validity window are reported with status
// "expired"; the stored record is left for the sweeper.
func (s *AppointmentService) ListInstances(ctx context.Context, tenantID string) ([]models.AppointmentInstance, error) {
	query := `
		SELECT tenant_id, instance_id, customer_access_token, customer_url,
		       valid_from, valid_until, ttl, status, fsm_activity,
		       customer_booking, fsm_response, created_at, updated_at
		FROM appointment_instances
		WHERE tenant_id = ?
		ORDER BY created_at DESC
	`

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, tenantID)
	metrics.ObserveQuery("instance_list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var instances []models.AppointmentInstance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		applyExpiry(instance, now)
		instances = append(instances, *instance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instances: %w", err)
	}

	return instances, nil
}

// GetByToken resolves an instance by its customer access token.
//
// The first successful read of a pending instance transitions it to
// "active". An instance past its validity window is inaccessible to the
// customer: the stored record is left for the sweeper but the read fails
// with models.ErrInstanceExpired.
func (s *AppointmentService) GetByToken(ctx context.Context, accessToken string) (*models.AppointmentInstance, error) {
	instance, err := s.getByToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if instance.IsExpired(now) {
		return nil, models.ErrInstanceExpired
	}

	if instance.Status == models.InstancePending {
		instance.Status = models.InstanceActive
		instance.UpdatedAt = now.UTC()
		if _, err := s.db.ExecContext(ctx, `
			UPDATE appointment_instances
			SET status = ?, updated_at = ?
			WHERE tenant_id = ? AND instance_id = ?
		`, string(instance.Status), instance.UpdatedAt, instance.TenantID, instance.InstanceID); err != nil {
			return nil, fmt.Errorf("failed to activate instance: %w", err)
		}
	}

	return instance, nil
}

// GetInstance loads one instance by tenant and instance ID, applying
// read-time expiry.
func (s *AppointmentService) GetInstance(ctx context.Context, tenantID, instanceID string) (*models.AppointmentInstance, error) {
	instance, err := s.getInstance(ctx, tenantID, instanceID)
	if err != nil {
		return nil, err
	}
	applyExpiry(instance, time.Now())
	return instance, nil
}

// UpdateCustomerBooking records the customer's submitted preferences for
// the instance behind the access token.
//
// A concrete requested date/time moves the instance to REQUESTED; a
// submission without one moves it to SUBMITTED. Resubmission overwrites
// the preferences but preserves the original submission timestamp.
func (s *AppointmentService) UpdateCustomerBooking(ctx context.Context, accessToken string, req *models.UpdateBookingRequest) (*models.AppointmentInstance, error) {
	instance, err := s.getByToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if instance.IsExpired(time.Now()) {
		return nil, models.ErrInstanceExpired
	}

	missing := util.RequireFields(map[string]string{
		"customerName":  req.CustomerName,
		"customerEmail": req.CustomerEmail,
	})
	if len(missing) > 0 {
		return nil, models.NewValidationError(missing...)
	}
	if err := util.ValidateEmail(req.CustomerEmail); err != nil {
		return nil, models.NewValidationError("customerEmail")
	}

	now := time.Now().UTC()
	booking := &models.CustomerBooking{
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		PreferredTimeSlots:  req.PreferredTimeSlots,
		CustomerMessage:     req.CustomerMessage,
		SpecialRequirements: req.SpecialRequirements,
		RequestedDateTime:   req.RequestedDateTime,
		SubmittedAt:         now,
		LastModifiedAt:      now,
	}
	// Resubmission keeps the original submission time.
	if instance.CustomerBooking != nil && !instance.CustomerBooking.SubmittedAt.IsZero() {
		booking.SubmittedAt = instance.CustomerBooking.SubmittedAt
	}

	if req.RequestedDateTime != nil {
		booking.Status = models.BookingRequested
		instance.Status = models.InstanceRequested
	} else {
		booking.Status = models.BookingSubmitted
		instance.Status = models.InstanceSubmitted
	}
	instance.CustomerBooking = booking
	instance.UpdatedAt = now

	bookingJSON, err := json.Marshal(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE appointment_instances
		SET status = ?, customer_booking = ?, updated_at = ?
		WHERE tenant_id = ? AND instance_id = ?
	`, string(instance.Status), string(bookingJSON), instance.UpdatedAt,
		instance.TenantID, instance.InstanceID)
	metrics.ObserveQuery("booking_update", start, err)
	if err != nil {
		metrics.BookingOperations.WithLabelValues("submit", "error").Inc()
		return nil, fmt.Errorf("failed to store booking: %w", err)
	}
	metrics.BookingOperations.WithLabelValues("submit", "success").Inc()

	s.logger.Info("customer booking submitted",
		zap.String(logging.FieldTenantID, instance.TenantID),
		zap.String(logging.FieldInstanceID, instance.InstanceID),
		zap.String("status", string(instance.Status)),
	)

	return instance, nil
}

// RespondToBooking records the dispatcher's approve or reject decision.
//
// A decision requires a submitted customer booking; responding to an
// instance without one returns models.ErrBookingRequired.
func (s *AppointmentService) RespondToBooking(ctx context.Context, tenantID, instanceID string, req *models.RespondToBookingRequest) (*models.AppointmentInstance, error) {
	if req.Response != models.ResponseApprove && req.Response != models.ResponseReject {
		return nil, models.NewValidationError("response")
	}

	instance, err := s.getInstance(ctx, tenantID, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.CustomerBooking == nil {
		return nil, models.ErrBookingRequired
	}

	now := time.Now().UTC()
	instance.FSMResponse = &models.DispatcherResponse{
		Response:         req.Response,
		SelectedTimeSlot: req.SelectedTimeSlot,
		Message:          req.Message,
		TechnicianNotes:  req.TechnicianNotes,
		RespondedAt:      now,
		RespondedBy:      req.RespondedBy,
	}

	if req.Response == models.ResponseApprove {
		instance.Status = models.InstanceConfirmed
		instance.CustomerBooking.Status = models.BookingApproved
	} else {
		instance.Status = models.InstanceRejected
		instance.CustomerBooking.Status = models.BookingRejected
	}
	instance.CustomerBooking.LastModifiedAt = now
	instance.UpdatedAt = now

	bookingJSON, err := json.Marshal(instance.CustomerBooking)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	responseJSON, err := json.Marshal(instance.FSMResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dispatcher response: %w", err)
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE appointment_instances
		SET status = ?, customer_booking = ?, fsm_response = ?, updated_at = ?
		WHERE tenant_id = ? AND instance_id = ?
	`, string(instance.Status), string(bookingJSON), string(responseJSON),
		instance.UpdatedAt, tenantID, instanceID)
	metrics.ObserveQuery("booking_respond", start, err)
	if err != nil {
		metrics.BookingOperations.WithLabelValues("respond", "error").Inc()
		return nil, fmt.Errorf("failed to store dispatcher response: %w", err)
	}
	metrics.BookingOperations.WithLabelValues("respond", "success").Inc()

	s.logger.Info("dispatcher responded",
		zap.String(logging.FieldTenantID, tenantID),
		zap.String(logging.FieldInstanceID, instanceID),
		zap.String("decision", req.Response),
	)

	return instance, nil
}

// DeleteExpired removes instances whose TTL has passed. Returns the number
// of rows removed. Used by the background sweeper and the prune utility.
func (s *AppointmentService) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM appointment_instances WHERE ttl < ?
	`, now.Unix())
	metrics.ObserveQuery("instance_sweep", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired instances: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check sweep result: %w", err)
	}
	return rows, nil
}

func (s *AppointmentService) getByToken(ctx context.Context, accessToken string) (*models.AppointmentInstance, error) {
	query := `
		SELECT tenant_id, instance_id, customer_access_token, customer_url,
		       valid_from, valid_until, ttl, status, fsm_activity,
		       customer_booking, fsm_response, created_at, updated_at
		FROM appointment_instances
		WHERE customer_access_token = ?
		LIMIT 1
	`
	start := time.Now()
	row := s.db.QueryRowContext(ctx, query, accessToken)
	instance, err := scanInstance(row)
	metrics.ObserveQuery("instance_get_by_token", start, err)
	if err == sql.ErrNoRows {
		return nil, models.ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (s *AppointmentService) getInstance(ctx context.Context, tenantID, instanceID string) (*models.AppointmentInstance, error) {
	query := `
		SELECT tenant_id, instance_id, customer_access_token, customer_url,
		       valid_from, valid_until, ttl, status, fsm_activity,
		       customer_booking, fsm_response, created_at, updated_at
		FROM appointment_instances
		WHERE tenant_id = ? AND instance_id = ?
		LIMIT 1
	`
	start := time.Now()
	row := s.db.QueryRowContext(ctx, query, tenantID, instanceID)
	instance, err := scanInstance(row)
	metrics.ObserveQuery("instance_get", start, err)
	if err == sql.ErrNoRows {
		return nil, models.ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInstance(row scanner) (*models.AppointmentInstance, error) {
	var instance models.AppointmentInstance
	var status string
	var activityJSON string
	var bookingJSON, responseJSON sql.NullString

	err := row.Scan(
		&instance.TenantID, &instance.InstanceID,
		&instance.CustomerAccessToken, &instance.CustomerURL,
		&instance.ValidFrom, &instance.ValidUntil, &instance.TTL,
		&status, &activityJSON, &bookingJSON, &responseJSON,
		&instance.CreatedAt, &instance.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan instance: %w", err)
	}

	instance.Status = models.InstanceStatus(status)
	if err := json.Unmarshal([]byte(activityJSON), &instance.FSMActivity); err != nil {
		return nil, fmt.Errorf("failed to decode activity snapshot: %w", err)
	}
	if bookingJSON.Valid && bookingJSON.String != "" {
		var booking models.CustomerBooking
		if err := json.Unmarshal([]byte(bookingJSON.String), &booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		instance.CustomerBooking = &booking
	}
	if responseJSON.Valid && responseJSON.String != "" {
		var response models.DispatcherResponse
		if err := json.Unmarshal([]byte(responseJSON.String), &response); err != nil {
			return nil, fmt.Errorf("failed to decode dispatcher response: %w", err)
		}
		instance.FSMResponse = &response
	}

	return &instance, nil
}

// applyExpiry rewrites the in-memory status to expired when the validity
// window has passed. Returns true when the instance is expired.
func applyExpiry(instance *models.AppointmentInstance, now time.Time) bool {
	if instance.IsExpired(now) {
		instance.Status = models.InstanceExpired
		return true
	}
	return false
}

// mergeActivities combines the full activity objects with any bare IDs
// that have no matching object. Bare IDs get a minimal snapshot.
func mergeActivities(req *models.CreateInstancesRequest) []models.Activity {
	byID := make(map[string]bool, len(req.Activities))
	activities := make([]models.Activity, 0, len(req.Activities)+len(req.ActivityIDs))
	for _, a := range req.Activities {
		if a.ID == "" {
			continue
		}
		byID[a.ID] = true
		activities = append(activities, a)
	}
	for _, id := range req.ActivityIDs {
		if id == "" || byID[id] {
			continue
		}
		byID[id] = true
		activities = append(activities, models.Activity{ID: id})
	}
	return activities
}
