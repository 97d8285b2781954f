package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mjhaler/appliancetrack/internal/model"
)

// GetHistory returns the full status history for an appliance, oldest first.
// History entries are never edited or removed, even when the appliance is
// archived and later restored.
func GetHistory(ctx context.Context, db *sql.DB, applianceID int64) ([]model.StatusEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, appliance_id, timestamp, status FROM status_history
		 WHERE appliance_id = ? ORDER BY id`,
		applianceID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting status history: %w", err)
	}
	defer rows.Close()

	var entries []model.StatusEntry
	for rows.Next() {
		var e model.StatusEntry
		if err := rows.Scan(&e.ID, &e.ApplianceID, &e.Timestamp, &e.Status); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
