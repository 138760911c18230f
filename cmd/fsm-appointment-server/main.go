// Package main provides the FSM appointment booking server.
//
// This is the main entrypoint for the fsm-appointment-server binary which
// runs the HTTP API for tenant onboarding, appointment instance management,
// and customer booking.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"

	"github.com/sempaphie/FSMappointment/cmd/fsm-appointment-server/cmd"
	"github.com/sempaphie/FSMappointment/internal/api"
	"github.com/sempaphie/FSMappointment/internal/hostbridge"
	"github.com/sempaphie/FSMappointment/internal/metrics"
	"github.com/sempaphie/FSMappointment/internal/service"
)

// Config holds server configuration from flags and environment variables.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080").
	ListenAddr string

	// DatabasePath is the path to the SQLite database file.
	DatabasePath string

	// BaseURL is the public origin used to build customer booking links.
	BaseURL string

	// InstanceID is this server instance's UUID.
	InstanceID string

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string

	// LogFormat is the log format (json, console).
	LogFormat string

	// AllowOrigins is comma-separated list of allowed CORS origins.
	AllowOrigins string

	// ShellEndpoint is the optional host shell websocket endpoint. When
	// empty the server runs without a host context bridge.
	ShellEndpoint string

	// SweepInterval is how often expired instances are deleted.
	SweepInterval time.Duration
}

// parseFlags parses command-line flags and environment variables.
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ListenAddr, "listen", getEnv("FSMAPT_LISTEN_ADDR", ":8080"),
		"Address to listen on")
	flag.StringVar(&config.DatabasePath, "db", getEnv("FSMAPT_DB_PATH", "./fsmappointment.db"),
		"Path to SQLite database file")
	flag.StringVar(&config.BaseURL, "base-url", getEnv("FSMAPT_BASE_URL", "http://localhost:8080"),
		"Public origin for customer booking links")
	flag.StringVar(&config.InstanceID, "instance-id", getEnv("FSMAPT_INSTANCE_ID", ""),
		"Server instance UUID (auto-generated if not provided)")
	flag.StringVar(&config.LogLevel, "log-level", getEnv("FSMAPT_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	flag.StringVar(&config.LogFormat, "log-format", getEnv("FSMAPT_LOG_FORMAT", "console"),
		"Log format (json, console)")
	flag.StringVar(&config.AllowOrigins, "cors-origins", getEnv("FSMAPT_CORS_ORIGINS", ""),
		"Comma-separated list of allowed CORS origins (* for all)")
	flag.StringVar(&config.ShellEndpoint, "shell-endpoint", getEnv("FSMAPT_SHELL_ENDPOINT", ""),
		"Host shell websocket endpoint (optional)")
	flag.DurationVar(&config.SweepInterval, "sweep-interval",
		getEnvDuration("FSMAPT_SWEEP_INTERVAL", service.DefaultSweepInterval),
		"Interval between expired-instance sweeps")

	flag.Parse()

	return config
}

// getEnv retrieves an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable with a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// validateConfig validates the server configuration.
func validateConfig(config *Config) error {
	if config.BaseURL == "" {
		return fmt.Errorf("base URL is required (set FSMAPT_BASE_URL or use -base-url flag)")
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https:// (got %q)", config.BaseURL)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	// Generate instance ID if not provided
	if config.InstanceID == "" {
		config.InstanceID = uuid.New().String()
	}
	if _, err := uuid.Parse(config.InstanceID); err != nil {
		return fmt.Errorf("invalid instance ID format: %w", err)
	}

	if config.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive (got %s)", config.SweepInterval)
	}

	return nil
}

// setupLogger creates a Zap logger based on configuration.
func setupLogger(config *Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}

	var zapConfig zap.Config
	if config.LogFormat == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// openDatabase opens a connection to the SQLite database.
func openDatabase(path string, logger *zap.Logger) (*sql.DB, error) {
	// WAL mode for concurrent reads while the sweeper writes
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", zap.String("path", path))
	return db, nil
}

// parseCORSOrigins parses the comma-separated CORS origins string.
func parseCORSOrigins(origins string) []string {
	if origins == "" {
		return nil
	}

	var result []string
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			result = append(result, origin)
		}
	}

	return result
}

// setupBridge dials the host shell and performs the context handshake.
// The server still starts when the shell is unreachable; host context
// endpoints report unavailable until a bridge connects.
func setupBridge(config *Config, logger *zap.Logger) *hostbridge.Bridge {
	if config.ShellEndpoint == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	messenger, err := hostbridge.DialWebSocket(ctx, config.ShellEndpoint)
	if err != nil {
		logger.Warn("host shell unreachable, continuing without bridge",
			zap.String("endpoint", config.ShellEndpoint),
			zap.Error(err),
		)
		return nil
	}

	bridge := hostbridge.New(messenger, logger)
	if _, err := bridge.Initialize(ctx); err != nil {
		logger.Warn("host context handshake failed",
			zap.String("endpoint", config.ShellEndpoint),
			zap.Error(err),
		)
	}
	return bridge
}

func main() {
	// Util subcommands bypass server flag parsing entirely.
	if len(os.Args) > 1 && os.Args[1] == "util" {
		if err := cmd.ExecuteUtil(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Local .env is optional; absence is not an error.
	_ = godotenv.Load()

	config := parseFlags()

	if err := validateConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := setupLogger(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting fsm-appointment-server",
		zap.String("version", "0.1.0"),
		zap.String("instance_id", config.InstanceID),
		zap.String("listen_addr", config.ListenAddr),
		zap.String("base_url", config.BaseURL),
		zap.String("log_level", config.LogLevel),
	)

	metrics.MustInit()

	db, err := openDatabase(config.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := service.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("failed to apply database schema", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.CollectDBStats(db)
		}
	}()

	// TTL sweeper for expired appointment instances
	appointmentService := service.NewAppointmentService(db, logger, config.BaseURL)
	sweeper := service.NewSweeper(appointmentService, logger, config.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	bridge := setupBridge(config, logger)

	router := api.SetupRouter(&api.RouterConfig{
		DB:           db,
		Logger:       logger,
		BaseURL:      config.BaseURL,
		InstanceID:   config.InstanceID,
		AllowOrigins: parseCORSOrigins(config.AllowOrigins),
		Bridge:       bridge,
	})

	logger.Info("server listening", zap.String("addr", config.ListenAddr))
	if err := router.Run(config.ListenAddr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
