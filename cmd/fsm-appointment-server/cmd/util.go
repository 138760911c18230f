// Package cmd provides CLI commands for fsm-appointment-server.
package cmd

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens a connection to the SQLite database.
func OpenDatabase(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ExecuteUtil runs a utility command with the given arguments.
func ExecuteUtil(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("util command requires a subcommand\n\nAvailable subcommands:\n  prune-instances  Remove expired appointment instances\n  renew-license    Extend a tenant's license validity\n  inspect-token    Inspect the instance behind a customer access token\n  compact-db       Compact and optimize database")
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "prune-instances":
		return ExecutePruneInstances(subArgs)
	case "renew-license":
		return ExecuteRenewLicense(subArgs)
	case "inspect-token":
		return ExecuteInspectToken(subArgs)
	case "compact-db":
		return ExecuteCompactDB(subArgs)
	default:
		return fmt.Errorf("unknown util subcommand: %s", subcommand)
	}
}

// getEnv retrieves an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
