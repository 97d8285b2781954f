package model

import "time"

// AuditEntry is one entry in the process-wide audit log. The log is
// append-only and ordered by insertion, which matches chronological order.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// Audit actions.
const (
	ActionAdd       = "add"
	ActionEdit      = "edit"
	ActionArchive   = "archive"
	ActionUnarchive = "unarchive"
)
