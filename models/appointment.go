package models

import "time"

// InstanceStatus tracks an appointment instance through its lifecycle.
//
// The casing is part of the wire contract: lifecycle states are lower-case,
// while the two customer-submission states are upper-case so list views can
// badge them distinctly.
type InstanceStatus string

const (
	// InstancePending means the instance was created but the customer has
	// not submitted anything yet.
	InstancePending InstanceStatus = "pending"

	// InstanceActive means the customer has opened the booking page.
	InstanceActive InstanceStatus = "active"

	// InstanceScheduled means the customer selected preferred time slots.
	InstanceScheduled InstanceStatus = "scheduled"

	// InstanceSubmitted means the customer submitted a booking without a
	// concrete requested date/time.
	InstanceSubmitted InstanceStatus = "SUBMITTED"

	// InstanceRequested means the customer submitted a booking with a
	// concrete requested date/time.
	InstanceRequested InstanceStatus = "REQUESTED"

	// InstanceConfirmed means the dispatcher approved the booking.
	InstanceConfirmed InstanceStatus = "confirmed"

	// InstanceRejected means the dispatcher rejected the booking.
	InstanceRejected InstanceStatus = "rejected"

	// InstanceExpired means the validity window has passed. This is a
	// read-time determination; the stored status is not rewritten.
	InstanceExpired InstanceStatus = "expired"

	// InstanceCompleted means the confirmed appointment took place.
	InstanceCompleted InstanceStatus = "completed"
)

// BookingStatus tracks the customer-side booking sub-state.
type BookingStatus string

const (
	BookingDraft       BookingStatus = "draft"
	BookingSubmitted   BookingStatus = "submitted"
	BookingRequested   BookingStatus = "requested"
	BookingUnderReview BookingStatus = "under_review"
	BookingApproved    BookingStatus = "approved"
	BookingRejected    BookingStatus = "rejected"
)

// TimeSlot is one offered appointment window. Slots are generated on demand
// by pkg/timeslot and embedded in customer bookings; they are never
// independently persisted.
type TimeSlot struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsAvailable bool      `json:"isAvailable"`
	IsSelected  bool      `json:"isSelected"`
}

// CustomerBooking holds the customer-submitted preferences for one
// appointment instance. Present only after the customer submits.
type CustomerBooking struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone,omitempty"`

	PreferredTimeSlots []TimeSlot `json:"preferredTimeSlots"`

	CustomerMessage     string `json:"customerMessage,omitempty"`
	SpecialRequirements string `json:"specialRequirements,omitempty"`

	// RequestedDateTime, when set, is the customer's concrete preferred
	// date/time and drives the requested/submitted status split.
	RequestedDateTime *time.Time `json:"requestedDateTime,omitempty"`

	Status         BookingStatus `json:"status"`
	SubmittedAt    time.Time     `json:"submittedAt"`
	LastModifiedAt time.Time     `json:"lastModifiedAt"`
}

// DispatcherResponse records the dispatcher's decision on a submitted
// booking. Present only after the dispatcher responds.
type DispatcherResponse struct {
	// Response is "approve" or "reject".
	Response string `json:"response"`

	SelectedTimeSlot *TimeSlot `json:"selectedTimeSlot,omitempty"`
	Message          string    `json:"fsmMessage,omitempty"`
	TechnicianNotes  string    `json:"technicianNotes,omitempty"`

	RespondedAt time.Time `json:"respondedAt"`
	RespondedBy string    `json:"respondedBy"`
}

// ResponseApprove and ResponseReject are the two accepted dispatcher
// decisions.
const (
	ResponseApprove = "approve"
	ResponseReject  = "reject"
)

// AppointmentInstance is one generated, tokenized booking request tied to
// exactly one source activity. Partition key is TenantID, sort key is
// InstanceID; CustomerAccessToken has a unique secondary index.
type AppointmentInstance struct {
	TenantID   string `json:"tenantId"`
	InstanceID string `json:"instanceId"`

	// CustomerAccessToken is an unguessable bearer capability: anyone
	// holding it can read and update this one instance with no further
	// authentication.
	CustomerAccessToken string `json:"customerAccessToken"`
	CustomerURL         string `json:"customerUrl"`

	// Validity window, fixed at 30 days from creation. TTL mirrors
	// ValidUntil as epoch seconds for the storage layer's physical expiry.
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil"`
	TTL        int64     `json:"ttl"`

	Status    InstanceStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	FSMActivity ActivitySnapshot `json:"fsmActivity"`

	CustomerBooking *CustomerBooking    `json:"customerBooking,omitempty"`
	FSMResponse     *DispatcherResponse `json:"fsmResponse,omitempty"`
}

// IsExpired reports whether the instance is past its validity window at the
// given time. Expiry is checked on read; the stored record is untouched
// until the TTL sweeper deletes it.
func (i *AppointmentInstance) IsExpired(now time.Time) bool {
	return now.After(i.ValidUntil)
}

// CreateInstancesRequest is the request body for POST /appointments.
type CreateInstancesRequest struct {
	ActivityIDs []string   `json:"activityIds"`
	Activities  []Activity `json:"activities"`
}

// FailedActivity records one activity whose instance could not be written
// during bulk creation. Partial failure is reported explicitly, never
// swallowed.
type FailedActivity struct {
	ActivityID string `json:"activityId"`
	Reason     string `json:"reason"`
}

// CreateInstancesResult is the payload for a bulk-create response.
type CreateInstancesResult struct {
	Instances    []AppointmentInstance `json:"instances"`
	CustomerURLs []string              `json:"customerUrls"`
	TotalCreated int                   `json:"totalCreated"`
	Failed       []FailedActivity      `json:"failed,omitempty"`
}

// UpdateBookingRequest is the request body for PUT /appointments/token/:token.
// CustomerName and CustomerEmail are required; everything else is optional.
type UpdateBookingRequest struct {
	CustomerName        string     `json:"customerName"`
	CustomerEmail       string     `json:"customerEmail"`
	CustomerPhone       string     `json:"customerPhone,omitempty"`
	PreferredTimeSlots  []TimeSlot `json:"preferredTimeSlots,omitempty"`
	CustomerMessage     string     `json:"customerMessage,omitempty"`
	SpecialRequirements string     `json:"specialRequirements,omitempty"`
	RequestedDateTime   *time.Time `json:"requestedDateTime,omitempty"`
}

// RespondToBookingRequest is the request body for the dispatcher's
// approve/reject action on a submitted booking.
type RespondToBookingRequest struct {
	Response         string    `json:"response"`
	SelectedTimeSlot *TimeSlot `json:"selectedTimeSlot,omitempty"`
	Message          string    `json:"fsmMessage,omitempty"`
	TechnicianNotes  string    `json:"technicianNotes,omitempty"`
	RespondedBy      string    `json:"respondedBy"`
}
