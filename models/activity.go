package models

// ActivityObject is the FSM object reference attached to an activity,
// typically pointing at the owning service call.
type ActivityObject struct {
	ObjectID   string `json:"objectId"`
	ObjectType string `json:"objectType"`
}

// Activity is an externally-owned work item fetched from the FSM Data API.
// Only the fields the booking flow needs are decoded; the Data API returns
// many more.
type Activity struct {
	ID              string          `json:"id"`
	Code            string          `json:"code,omitempty"`
	Subject         string          `json:"subject,omitempty"`
	Status          string          `json:"status,omitempty"`
	BusinessPartner string          `json:"businessPartner,omitempty"`
	Object          *ActivityObject `json:"object,omitempty"`
	StartDateTime   string          `json:"startDateTime,omitempty"`
	EndDateTime     string          `json:"endDateTime,omitempty"`
	Equipment       []string        `json:"equipment,omitempty"`
}

// ActivitySnapshot is the frozen copy of an activity embedded in an
// appointment instance at creation time. It is never re-synced with the
// FSM platform afterwards.
type ActivitySnapshot struct {
	ActivityID        string          `json:"activityId"`
	ActivityCode      string          `json:"activityCode"`
	Subject           string          `json:"subject"`
	Status            string          `json:"status"`
	BusinessPartner   string          `json:"businessPartner"`
	Object            *ActivityObject `json:"object,omitempty"`
	ServiceCallID     string          `json:"serviceCallId,omitempty"`
	ServiceCallNumber string          `json:"serviceCallNumber,omitempty"`
	Equipment         []string        `json:"equipment,omitempty"`
}

// Snapshot freezes the activity fields for embedding in a new instance.
// The service call reference is derived from the object reference when the
// object points at a service call.
func (a *Activity) Snapshot() ActivitySnapshot {
	snap := ActivitySnapshot{
		ActivityID:      a.ID,
		ActivityCode:    a.Code,
		Subject:         a.Subject,
		Status:          a.Status,
		BusinessPartner: a.BusinessPartner,
		Object:          a.Object,
		Equipment:       a.Equipment,
	}
	if a.Object != nil {
		snap.ServiceCallID = a.Object.ObjectID
		if n := a.Object.ObjectID; len(n) > 7 {
			snap.ServiceCallNumber = n[len(n)-7:]
		} else {
			snap.ServiceCallNumber = n
		}
	}
	return snap
}

// ActivityListResponse is the response for GET /activities.
type ActivityListResponse struct {
	Success    bool       `json:"success"`
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}
