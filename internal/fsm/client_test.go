package fsm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/models"
)

func testTenant(cluster string) *models.Tenant {
	return &models.Tenant{
		TenantID:     "acct1_comp1",
		AccountID:    "acct1",
		CompanyID:    "comp1",
		Cluster:      cluster,
		ClientID:     "client-abc",
		ClientSecret: "secret-xyz",
		IsActive:     true,
		ValidTo:      time.Now().AddDate(0, 0, 14),
	}
}

func newFSMTestServer(t *testing.T, activityHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/oauth2/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("token request missing basic auth")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/data/v4/Activity", activityHandler)
	return httptest.NewServer(mux)
}

func TestFetchActivities(t *testing.T) {
	server := newFSMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Account-ID"); got != "acct1" {
			t.Errorf("X-Account-ID = %q", got)
		}
		if got := r.Header.Get("X-Company-ID"); got != "comp1" {
			t.Errorf("X-Company-ID = %q", got)
		}
		if got := r.Header.Get("X-Client-ID"); got != "client-abc" {
			t.Errorf("X-Client-ID = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("dtos"); got != "Activity.43" {
			t.Errorf("dtos = %q", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "50" {
			t.Errorf("pageSize = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"activity":{"id":"a1","subject":"Boiler check","object":{"objectId":"SC-1","objectType":"SERVICECALL"}}}]}`))
	})
	defer server.Close()

	client := NewClient(context.Background(), testTenant(server.URL), zap.NewNop())

	activities, err := client.FetchActivities(context.Background())
	if err != nil {
		t.Fatalf("FetchActivities failed: %v", err)
	}
	if len(activities) != 1 || activities[0].ID != "a1" {
		t.Fatalf("unexpected activities: %+v", activities)
	}
	if activities[0].Object == nil || activities[0].Object.ObjectType != "SERVICECALL" {
		t.Fatalf("object reference not decoded: %+v", activities[0])
	}
}

func TestFetchActivitiesUpstreamError(t *testing.T) {
	server := newFSMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	defer server.Close()

	client := NewClient(context.Background(), testTenant(server.URL), zap.NewNop())

	_, err := client.FetchActivities(context.Background())
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestFetchActivitiesDecodeError(t *testing.T) {
	server := newFSMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"surprise":"shape"}`))
	})
	defer server.Close()

	client := NewClient(context.Background(), testTenant(server.URL), zap.NewNop())

	_, err := client.FetchActivities(context.Background())
	if !errors.Is(err, models.ErrUpstreamDecode) {
		t.Fatalf("expected ErrUpstreamDecode, got %v", err)
	}
}
