package cmd

import (
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ExecutePruneInstances removes expired appointment instances from the
// database. The running server sweeps on its own; this command covers
// maintenance windows and servers started with sweeping effectively idle.
func ExecutePruneInstances(args []string) error {
	fs := flag.NewFlagSet("prune-instances", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Preview deletions without modifying database")
	dbPath := fs.String("db", getEnv("FSMAPT_DB_PATH", "./fsmappointment.db"), "Path to SQLite database")
	verbose := fs.Bool("verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return err
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

	now := time.Now()
	logger.Info("pruning expired instances",
		zap.Time("cutoff", now),
		zap.Bool("dry_run", *dryRun),
	)

	query := `
		SELECT instance_id, tenant_id, activity_id, status, valid_until
		FROM appointment_instances
		WHERE ttl < ?
		ORDER BY valid_until ASC
	`

	rows, err := db.Query(query, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to query expired instances: %w", err)
	}
	defer rows.Close()

	type expiredInstance struct {
		InstanceID string
		TenantID   string
		ActivityID string
		Status     string
		ValidUntil time.Time
	}

	var instances []expiredInstance
	for rows.Next() {
		var i expiredInstance
		if err := rows.Scan(&i.InstanceID, &i.TenantID, &i.ActivityID, &i.Status, &i.ValidUntil); err != nil {
			return fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, i)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating instances: %w", err)
	}

	if len(instances) == 0 {
		logger.Info("no expired instances found")
		return nil
	}

	logger.Info("found expired instances", zap.Int("count", len(instances)))

	fmt.Printf("\nExpired instances:\n")
	fmt.Println("=====================================")
	for _, i := range instances {
		age := now.Sub(i.ValidUntil)
		fmt.Printf("  Instance ID:  %s\n", i.InstanceID)
		fmt.Printf("  Tenant ID:    %s\n", i.TenantID)
		fmt.Printf("  Activity ID:  %s\n", i.ActivityID)
		fmt.Printf("  Status:       %s\n", i.Status)
		fmt.Printf("  Valid Until:  %s (expired %.0f hours ago)\n", i.ValidUntil.Format(time.RFC3339), age.Hours())
		fmt.Println("  ---")
	}

	if *dryRun {
		fmt.Printf("\n[DRY RUN] Would delete %d expired instance(s)\n", len(instances))
		return nil
	}

	result, err := db.Exec(`DELETE FROM appointment_instances WHERE ttl < ?`, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to delete expired instances: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.Info("pruned expired instances", zap.Int64("deleted", deleted))
	fmt.Printf("\n✓ Successfully deleted %d expired instance(s)\n", deleted)

	return nil
}
