package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS appliances (
    id           INTEGER PRIMARY KEY,
    store_name   TEXT NOT NULL,
    item_number  TEXT NOT NULL,
    brand        TEXT NOT NULL,
    model        TEXT NOT NULL,
    serial       TEXT NOT NULL,
    status       TEXT NOT NULL CHECK (status IN ('In', 'Checked', 'Parts Ordered', 'Repaired', 'Loaded', 'Delivered')),
    notes        TEXT,
    archived     INTEGER NOT NULL DEFAULT 0,
    invoice_file TEXT,
    invoice_data BLOB,
    invoice_mime TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_appliances_identity
    ON appliances(lower(store_name), item_number);

CREATE TABLE IF NOT EXISTS status_history (
    id           INTEGER PRIMARY KEY,
    appliance_id INTEGER NOT NULL REFERENCES appliances(id) ON DELETE CASCADE,
    timestamp    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    status       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
    id        INTEGER PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    action    TEXT NOT NULL,
    details   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('admin', 'store')),
    store_name    TEXT,
    active        INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: speed up per-appliance history reads.
	`CREATE INDEX IF NOT EXISTS idx_status_history_appliance
	     ON status_history(appliance_id)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
