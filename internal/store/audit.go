package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mjhaler/appliancetrack/internal/model"
)

// execer covers *sql.DB and *sql.Tx, so audit entries can be written inside
// the same transaction as the mutation they describe.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// logAction appends an entry to the audit log.
func logAction(ctx context.Context, q execer, at time.Time, action, details string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO audit_log (timestamp, action, details) VALUES (?, ?, ?)`,
		at, action, details,
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// ListAuditLog returns the full audit log in insertion order.
func ListAuditLog(ctx context.Context, db *sql.DB) ([]model.AuditEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, timestamp, action, details FROM audit_log ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Details); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastAuditEntry returns the most recent audit entry, or nil if the log is
// empty.
func LastAuditEntry(ctx context.Context, db *sql.DB) (*model.AuditEntry, error) {
	e := &model.AuditEntry{}
	err := db.QueryRowContext(ctx,
		`SELECT id, timestamp, action, details FROM audit_log ORDER BY id DESC LIMIT 1`,
	).Scan(&e.ID, &e.Timestamp, &e.Action, &e.Details)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last audit entry: %w", err)
	}
	return e, nil
}
