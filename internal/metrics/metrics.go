// Package metrics provides Prometheus metrics for the appointment server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the global Prometheus registry for all metrics.
	Registry = prometheus.NewRegistry()

	// initialized tracks whether metrics have been initialized.
	initialized = false
)

// Init initializes the metrics registry with all collectors.
// This should be called once during application startup.
func Init() error {
	if initialized {
		return nil
	}

	// Register Go runtime collectors
	if err := Registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err := Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return err
	}

	// Register HTTP metrics
	if err := registerHTTPMetrics(); err != nil {
		return err
	}

	// Register rate limit metrics
	if err := registerRateLimitMetrics(); err != nil {
		return err
	}

	// Register database metrics
	if err := registerDatabaseMetrics(); err != nil {
		return err
	}

	// Register business metrics
	if err := registerBusinessMetrics(); err != nil {
		return err
	}

	initialized = true
	return nil
}

// MustInit initializes metrics and panics on error.
// Use this for application startup where metrics are required.
func MustInit() {
	if err := Init(); err != nil {
		panic("failed to initialize metrics: " + err.Error())
	}
}

// registerBusinessMetrics registers business-level metrics.
func registerBusinessMetrics() error {
	metrics := []prometheus.Collector{
		TenantCount,
		InstanceCount,
		InstanceOperations,
		BookingOperations,
		InstancesSwept,
		FSMRequests,
		FSMRequestDuration,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

var (
	// TenantCount tracks the number of registered tenants by validation status.
	TenantCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fsmapt_tenants_total",
			Help: "Total number of registered tenants by license status",
		},
		[]string{"status"},
	)

	// InstanceCount tracks the number of appointment instances per tenant
	// and lifecycle status.
	InstanceCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fsmapt_instances_total",
			Help: "Total number of appointment instances by tenant and status",
		},
		[]string{"tenant_id", "status"},
	)

	// InstanceOperations tracks appointment instance operations.
	InstanceOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsmapt_instance_operations_total",
			Help: "Total number of appointment instance operations",
		},
		[]string{"operation", "status"},
	)

	// BookingOperations tracks customer booking and dispatcher response
	// operations.
	BookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsmapt_booking_operations_total",
			Help: "Total number of booking submissions and dispatcher responses",
		},
		[]string{"operation", "status"},
	)

	// InstancesSwept counts appointment instances removed by the TTL sweeper.
	InstancesSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fsmapt_instances_swept_total",
			Help: "Total number of expired appointment instances removed by the sweeper",
		},
	)

	// FSMRequests counts outbound Field Service Management API requests.
	FSMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsmapt_fsm_requests_total",
			Help: "Total number of outbound FSM API requests",
		},
		[]string{"operation", "status"},
	)

	// FSMRequestDuration measures outbound FSM API request duration.
	FSMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fsmapt_fsm_request_duration_seconds",
			Help:    "Outbound FSM API request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)
)
