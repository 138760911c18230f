package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/service"
)

// ExecuteRenewLicense extends a tenant's license validity. Renewal counts
// from the current expiry when the license is still valid, from now when it
// has already lapsed. With -activate the tenant is also reactivated, which
// covers the common support case of a lapsed-and-disabled tenant coming
// back.
func ExecuteRenewLicense(args []string) error {
	fs := flag.NewFlagSet("renew-license", flag.ExitOnError)
	tenantID := fs.String("tenant-id", "", "Tenant ID (accountId_companyId) to renew (required)")
	days := fs.Int("days", 365, "Number of days to extend the license by")
	activate := fs.Bool("activate", false, "Also reactivate the tenant if it was administratively disabled")
	dbPath := fs.String("db", getEnv("FSMAPT_DB_PATH", "./fsmappointment.db"), "Path to SQLite database")
	verbose := fs.Bool("verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *tenantID == "" {
		return fmt.Errorf("--tenant-id is required")
	}
	if *days <= 0 {
		return fmt.Errorf("--days must be positive (got %d)", *days)
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

	ctx := context.Background()
	tenants := service.NewTenantService(db, logger)

	before, err := tenants.GetTenant(ctx, *tenantID)
	if err != nil {
		return fmt.Errorf("tenant not found or error querying: %w", err)
	}

	renewed, err := tenants.RenewLicense(ctx, *tenantID, *days)
	if err != nil {
		return fmt.Errorf("failed to renew license: %w", err)
	}

	if *activate && !renewed.IsActive {
		if err := tenants.SetActive(ctx, *tenantID, true); err != nil {
			return fmt.Errorf("failed to reactivate tenant: %w", err)
		}
		renewed.IsActive = true
	}

	fmt.Printf("\nRenewed license for: %s\n", *tenantID)
	fmt.Println("=====================================")
	fmt.Printf("  Company:        %s\n", renewed.CompanyName)
	fmt.Printf("  Active:         %t\n", renewed.IsActive)
	fmt.Printf("  Was Valid To:   %s\n", before.ValidTo.Format(time.RFC3339))
	fmt.Printf("  Now Valid To:   %s (+%d days)\n", renewed.ValidTo.Format(time.RFC3339), *days)

	fmt.Printf("\n✓ License renewed until %s\n", renewed.ValidTo.Format(time.RFC3339))
	return nil
}
