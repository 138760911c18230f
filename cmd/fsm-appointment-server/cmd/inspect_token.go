package cmd

import (
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/pkg/token"
)

// ExecuteInspectToken looks up a customer access token and reports the
// state of the instance behind it. Useful when a customer reports a dead
// booking link.
func ExecuteInspectToken(args []string) error {
	fs := flag.NewFlagSet("inspect-token", flag.ExitOnError)
	accessToken := fs.String("token", "", "Customer access token to inspect (required)")
	digestSecret := fs.String("digest-secret", getEnv("FSMAPT_DIGEST_SECRET", ""),
		"Print an HMAC-SHA256 digest of the token under this secret, for referencing the token in tickets without reproducing it")
	dbPath := fs.String("db", getEnv("FSMAPT_DB_PATH", "./fsmappointment.db"), "Path to SQLite database")
	verbose := fs.Bool("verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *accessToken == "" {
		return fmt.Errorf("--token is required")
	}
	if err := token.ValidateLength(*accessToken); err != nil {
		return fmt.Errorf("malformed token: %w", err)
	}

	logConfig := zap.NewDevelopmentConfig()
	if !*verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	db, err := OpenDatabase(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var instanceID, tenantID, activityID, status string
	var validUntil time.Time
	var hasBooking int
	query := `
		SELECT instance_id, tenant_id, activity_id, status, valid_until,
		       customer_booking IS NOT NULL
		FROM appointment_instances
		WHERE customer_access_token = ?
	`
	if err := db.QueryRow(query, *accessToken).Scan(
		&instanceID, &tenantID, &activityID, &status, &validUntil, &hasBooking,
	); err != nil {
		fmt.Printf("\n✗ Token not found\n")
		fmt.Printf("  No live instance carries this token; it may have been swept after expiry\n")
		return fmt.Errorf("token lookup failed: %w", err)
	}

	now := time.Now()
	expired := now.After(validUntil)

	fmt.Printf("\nInstance for token:\n")
	fmt.Println("=====================================")
	if *digestSecret != "" {
		fmt.Printf("  Token Digest: %s\n", token.Hash(*accessToken, *digestSecret))
	}
	fmt.Printf("  Instance ID:  %s\n", instanceID)
	fmt.Printf("  Tenant ID:    %s\n", tenantID)
	fmt.Printf("  Activity ID:  %s\n", activityID)
	fmt.Printf("  Status:       %s\n", status)
	fmt.Printf("  Has Booking:  %t\n", hasBooking == 1)
	if expired {
		fmt.Printf("  Valid Until:  %s (EXPIRED %.0f hours ago)\n",
			validUntil.Format(time.RFC3339), now.Sub(validUntil).Hours())
	} else {
		fmt.Printf("  Valid Until:  %s (%.0f hours remaining)\n",
			validUntil.Format(time.RFC3339), validUntil.Sub(now).Hours())
	}

	if expired {
		fmt.Printf("\n✗ Token is EXPIRED; the booking link no longer works\n")
	} else {
		fmt.Printf("\n✓ Token is live\n")
	}

	logger.Info("token inspected",
		zap.String("instance_id", instanceID),
		zap.String("tenant_id", tenantID),
		zap.Bool("expired", expired),
	)
	return nil
}
