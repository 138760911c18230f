// Package fsm talks to the Field Service Management cloud APIs on behalf
// of a tenant. Authentication uses OAuth client credentials stored on the
// tenant record; the token lifecycle is handled by golang.org/x/oauth2.
package fsm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sempaphie/FSMappointment/internal/logging"
	"github.com/sempaphie/FSMappointment/internal/metrics"
	"github.com/sempaphie/FSMappointment/models"
)

const (
	// activityDTOVersion pins the Data API DTO revision the decoder
	// understands.
	activityDTOVersion = "Activity.43"

	// activityPageSize caps one fetch; the dashboard never shows more.
	activityPageSize = 50

	clientVersion  = "1.0"
	requestTimeout = 30 * time.Second
)

// Client fetches activities from the FSM Data API for one tenant.
type Client struct {
	tenant     *models.Tenant
	httpClient *http.Client
	logger     *zap.Logger

	// baseURL overrides the tenant cluster in tests.
	baseURL string
}

// NewClient builds a per-tenant API client. The tenant record must carry
// the full credentials (client ID and secret); use
// TenantService.GetTenantCredentials, not a sanitized read.
func NewClient(ctx context.Context, tenant *models.Tenant, logger *zap.Logger) *Client {
	cfg := &clientcredentials.Config{
		ClientID:     tenant.ClientID,
		ClientSecret: tenant.ClientSecret,
		TokenURL:     tenant.Cluster + "/api/oauth2/v1/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	httpClient := cfg.Client(ctx)
	httpClient.Timeout = requestTimeout
	// Inject the FSM identification headers below the OAuth transport so
	// every request carries them.
	httpClient.Transport = &headerTransport{
		next:      httpClient.Transport,
		accountID: tenant.AccountID,
		companyID: tenant.CompanyID,
		clientID:  tenant.ClientID,
	}

	return &Client{
		tenant:     tenant,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    tenant.Cluster,
	}
}

// headerTransport adds the FSM identification headers to every request.
type headerTransport struct {
	next      http.RoundTripper
	accountID string
	companyID string
	clientID  string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Account-ID", t.accountID)
	clone.Header.Set("X-Company-ID", t.companyID)
	clone.Header.Set("X-Client-ID", t.clientID)
	clone.Header.Set("X-Client-Version", clientVersion)
	clone.Header.Set("Accept", "application/json")

	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(clone)
}

// FetchActivities loads the tenant's open activities from the Data API.
func (c *Client) FetchActivities(ctx context.Context) ([]models.Activity, error) {
	query := url.Values{}
	query.Set("dtos", activityDTOVersion)
	query.Set("pageSize", fmt.Sprintf("%d", activityPageSize))
	query.Set("account", c.tenant.AccountID)
	query.Set("company", c.tenant.CompanyID)

	endpoint := c.baseURL + "/api/data/v4/Activity?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build activity request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.FSMRequestDuration.WithLabelValues("fetch_activities").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FSMRequests.WithLabelValues("fetch_activities", "error").Inc()
		c.logger.Error("activity fetch failed",
			zap.String(logging.FieldTenantID, c.tenant.TenantID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		metrics.FSMRequests.WithLabelValues("fetch_activities", "error").Inc()
		return nil, fmt.Errorf("%w: reading response: %v", models.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.FSMRequests.WithLabelValues("fetch_activities", fmt.Sprintf("%d", resp.StatusCode)).Inc()
		c.logger.Warn("activity fetch returned non-200",
			zap.String(logging.FieldTenantID, c.tenant.TenantID),
			zap.Int(logging.FieldStatusCode, resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", models.ErrUpstream, resp.StatusCode)
	}

	activities, err := decodeActivities(body)
	if err != nil {
		metrics.FSMRequests.WithLabelValues("fetch_activities", "decode_error").Inc()
		return nil, err
	}

	metrics.FSMRequests.WithLabelValues("fetch_activities", "success").Inc()
	return activities, nil
}
