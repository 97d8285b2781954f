package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mjhaler/appliancetrack/internal/model"
)

// DumpAll returns every appliance, active and archived, with its full status
// history and any stored invoice embedded. This is the whole-collection
// snapshot used for JSON persistence and backups.
func DumpAll(ctx context.Context, db *sql.DB) ([]model.Appliance, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("dumping appliances: %w", err)
	}
	appliances, err := scanAppliances(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range appliances {
		history, err := GetHistory(ctx, db, appliances[i].ID)
		if err != nil {
			return nil, err
		}
		appliances[i].History = history

		if appliances[i].InvoiceFile == "" {
			continue
		}
		var mime sql.NullString
		err = db.QueryRowContext(ctx,
			`SELECT invoice_data, invoice_mime FROM appliances WHERE id = ?`,
			appliances[i].ID,
		).Scan(&appliances[i].InvoiceData, &mime)
		if err != nil {
			return nil, fmt.Errorf("dumping invoice for %s: %w", appliances[i].Key(), err)
		}
		appliances[i].InvoiceMIME = mime.String
	}
	return appliances, nil
}

// ReplaceAll replaces the entire collection with the given snapshot,
// including status histories and stored invoices. Used by JSON load and
// backup restore: there is no merging, the previous collection is gone
// afterwards.
func ReplaceAll(ctx context.Context, db *sql.DB, appliances []model.Appliance) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM status_history`); err != nil {
		return fmt.Errorf("clearing status history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM appliances`); err != nil {
		return fmt.Errorf("clearing appliances: %w", err)
	}

	for _, a := range appliances {
		var invoiceData any
		if len(a.InvoiceData) > 0 {
			invoiceData = a.InvoiceData
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO appliances (store_name, item_number, brand, model, serial, status, notes, archived, invoice_file, invoice_data, invoice_mime, created_at, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.StoreName, a.ItemNumber, a.Brand, a.Model, a.Serial, a.Status,
			a.Notes, a.Archived, nullIfEmpty(a.InvoiceFile), invoiceData,
			nullIfEmpty(a.InvoiceMIME), a.CreatedAt, a.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("restoring appliance %s: %w", a.Key(), err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting appliance id: %w", err)
		}
		for _, e := range a.History {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO status_history (appliance_id, timestamp, status) VALUES (?, ?, ?)`,
				id, e.Timestamp, e.Status,
			); err != nil {
				return fmt.Errorf("restoring history for %s: %w", a.Key(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restore: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
