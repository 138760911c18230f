package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/api/handlers"
	"github.com/sempaphie/FSMappointment/internal/api/middleware"
	"github.com/sempaphie/FSMappointment/internal/hostbridge"
	"github.com/sempaphie/FSMappointment/internal/metrics"
	"github.com/sempaphie/FSMappointment/internal/ratelimit"
	"github.com/sempaphie/FSMappointment/internal/service"
)

// RouterConfig holds configuration for setting up the HTTP router.
type RouterConfig struct {
	// DB is the database connection.
	DB *sql.DB

	// Logger is the Zap logger for request logging.
	Logger *zap.Logger

	// BaseURL is the public origin used to build customer booking links.
	BaseURL string

	// InstanceID is this server instance's UUID.
	InstanceID string

	// AllowOrigins is the list of allowed CORS origins.
	// Use []string{"*"} to allow all origins.
	AllowOrigins []string

	// Bridge is the host shell bridge. May be nil when the server runs
	// without an embedding shell.
	Bridge *hostbridge.Bridge

	// RateLimit configures the token guard budgets. Zero value uses
	// ratelimit.DefaultConfig.
	RateLimit ratelimit.Config
}

// SetupRouter creates and configures the Gin HTTP router with all routes
// and middleware.
//
// Route groups:
//   - Health and metrics endpoints (no tenant resolution)
//   - Tenant validation and onboarding (identity via query/body)
//   - Dispatcher endpoints (identity headers, validated tenant required)
//   - Customer endpoints (capability token is the only credential)
func SetupRouter(config *RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(config.Logger))

	if len(config.AllowOrigins) > 0 {
		router.Use(middleware.CORS(config.AllowOrigins))
	}

	// Global rate limiting by IP (applies to all endpoints)
	router.Use(middleware.RateLimitByIP(100.0, 200))

	rateLimitConfig := config.RateLimit
	if rateLimitConfig == (ratelimit.Config{}) {
		rateLimitConfig = ratelimit.DefaultConfig()
	}
	tokenGuard := middleware.NewTokenGuard(rateLimitConfig)

	// Services
	tenantService := service.NewTenantService(config.DB, config.Logger)
	appointmentService := service.NewAppointmentService(config.DB, config.Logger, config.BaseURL)

	tenantHandler := handlers.NewTenantHandler(tenantService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, tokenGuard)
	timeslotHandler := handlers.NewTimeSlotHandler()
	activityHandler := handlers.NewActivityHandler(tenantService, config.Logger)
	contextHandler := handlers.NewHostContextHandler(config.Bridge)
	healthHandler := handlers.NewHealthHandler(config.DB, config.InstanceID)

	tenantConfig := &middleware.TenantConfig{
		Tenants: tenantService,
		Logger:  config.Logger,
	}

	// Metrics endpoint (no authentication required)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	// Health check routes
	health := router.Group("/health")
	health.Use(tokenGuard.RateLimitHealthCheck())
	{
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Tenant validation and onboarding. Identity travels in the query or
	// body here because these calls run before a valid tenant exists.
	v1.GET("/validate", tenantHandler.Validate)
	v1.POST("/tenant", tenantHandler.Create)
	v1.GET("/tenant/:tenantId", tenantHandler.Get)
	v1.PUT("/tenant/:tenantId", tenantHandler.Update)

	// Host shell context
	v1.GET("/context", contextHandler.Get)
	v1.POST("/context/refresh", contextHandler.Refresh)

	// Time slots for the booking page (token holders are anonymous)
	v1.GET("/timeslots", timeslotHandler.List)

	// Customer endpoints: the access token is the only credential.
	customer := v1.Group("/appointments/token")
	customer.Use(tokenGuard.BlockOnLookupFailures())
	{
		customer.GET("/:token", appointmentHandler.GetByToken)
		customer.PUT("/:token",
			tokenGuard.RateLimitBookingSubmit(),
			appointmentHandler.UpdateBooking)
	}

	// Dispatcher endpoints: identity headers resolve to a validated tenant.
	dispatcher := v1.Group("")
	dispatcher.Use(middleware.RequireTenant(tenantConfig))
	dispatcher.Use(middleware.RateLimitByTenant(50.0, 100))
	{
		dispatcher.POST("/appointments", appointmentHandler.Create)
		dispatcher.GET("/appointments", appointmentHandler.List)
		dispatcher.POST("/appointments/:instanceId/response", appointmentHandler.Respond)
		dispatcher.GET("/activities", activityHandler.List)
	}

	return router
}
