package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestInitIdempotent(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	// Second call must not attempt duplicate registration.
	if err := Init(); err != nil {
		t.Fatalf("Init() second call error = %v", err)
	}
}

func TestHTTPMetricsRecorded(t *testing.T) {
	MustInit()

	HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/tenant", "200").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/api/v1/tenant").Observe(0.042)

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "fsmapt_http_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("fsmapt_http_requests_total not registered")
	}
}

func TestBusinessMetricsRecorded(t *testing.T) {
	MustInit()

	InstanceCount.WithLabelValues("acc_comp", "active").Set(3)
	InstanceOperations.WithLabelValues("create", "success").Inc()
	BookingOperations.WithLabelValues("submit", "success").Inc()
	InstancesSwept.Add(2)
	TenantCount.WithLabelValues("VALID").Set(1)

	if got := gaugeValue(t, InstanceCount.WithLabelValues("acc_comp", "active")); got != 3 {
		t.Errorf("InstanceCount = %v, want 3", got)
	}
}

func TestObserveQuery(t *testing.T) {
	MustInit()

	before := counterValue(t, DBQueriesTotal.WithLabelValues("tenant_get", "success"))
	ObserveQuery("tenant_get", time.Now().Add(-5*time.Millisecond), nil)
	after := counterValue(t, DBQueriesTotal.WithLabelValues("tenant_get", "success"))

	if after != before+1 {
		t.Errorf("success counter = %v, want %v", after, before+1)
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}
