package service

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied at startup. All statements are idempotent so restarts
// against an existing database are safe.
const schema = `
CREATE TABLE IF NOT EXISTS tenants (
    tenant_id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL,
    account_name TEXT NOT NULL DEFAULT '',
    company_id TEXT NOT NULL,
    company_name TEXT NOT NULL DEFAULT '',
    cluster TEXT NOT NULL DEFAULT '',
    contact_company_name TEXT NOT NULL DEFAULT '',
    contact_full_name TEXT NOT NULL DEFAULT '',
    contact_phone TEXT NOT NULL DEFAULT '',
    contact_email TEXT NOT NULL DEFAULT '',
    client_id TEXT NOT NULL DEFAULT '',
    client_secret TEXT NOT NULL DEFAULT '',
    valid_from DATETIME NOT NULL,
    valid_to DATETIME NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS appointment_instances (
    tenant_id TEXT NOT NULL,
    instance_id TEXT NOT NULL,
    customer_access_token TEXT NOT NULL,
    customer_url TEXT NOT NULL,
    valid_from DATETIME NOT NULL,
    valid_until DATETIME NOT NULL,
    ttl INTEGER NOT NULL,
    status TEXT NOT NULL,
    activity_id TEXT NOT NULL,
    fsm_activity TEXT NOT NULL,
    customer_booking TEXT,
    fsm_response TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    PRIMARY KEY (tenant_id, instance_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_instances_token
    ON appointment_instances(customer_access_token);
CREATE INDEX IF NOT EXISTS idx_instances_ttl
    ON appointment_instances(ttl);
CREATE INDEX IF NOT EXISTS idx_instances_tenant_activity
    ON appointment_instances(tenant_id, activity_id);
`

// EnsureSchema creates the database tables and indexes if they do not exist.
// Called once during startup before any service is constructed.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
