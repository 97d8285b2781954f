package impex

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// TimestampFormat is the timestamp layout used in exports.
const TimestampFormat = "2006-01-02 15:04:05"

// applianceHeader is the fixed CSV column order for appliance exports.
var applianceHeader = []string{"store_name", "item_number", "brand", "model", "serial", "status", "notes"}

// ExportCSV writes the active appliances as CSV. Archived appliances are
// excluded, matching the default listings.
func ExportCSV(ctx context.Context, db *sql.DB, w io.Writer) error {
	appliances, err := store.ListActive(ctx, db)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(applianceHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, a := range appliances {
		row := []string{a.StoreName, a.ItemNumber, a.Brand, a.Model, a.Serial, a.Status, a.Notes}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportAuditCSV writes the full audit log as CSV, in insertion order.
func ExportAuditCSV(ctx context.Context, db *sql.DB, w io.Writer) error {
	entries, err := store.ListAuditLog(ctx, db)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "action", "details"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range entries {
		row := []string{e.Timestamp.Format(TimestampFormat), e.Action, e.Details}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads appliances from CSV and adds the new ones. A row is
// skipped when it lacks the identity columns or when an appliance with the
// same key already exists; nothing is merged. Missing optional columns
// default to empty, a missing or unknown status defaults to "In". Returns
// the number of appliances imported.
func ImportCSV(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading CSV header: %w", err)
	}
	// Excel prefixes UTF-8 CSVs with a byte order mark, which would
	// otherwise hide the first column.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	imported := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("reading CSV row: %w", err)
		}

		in := store.ApplianceInput{
			StoreName:  field(row, "store_name"),
			ItemNumber: field(row, "item_number"),
			Brand:      field(row, "brand"),
			Model:      field(row, "model"),
			Serial:     field(row, "serial"),
			Status:     field(row, "status"),
			Notes:      field(row, "notes"),
		}
		if in.StoreName == "" || in.ItemNumber == "" {
			continue
		}
		if !model.ValidStatus(in.Status) {
			in.Status = model.StatusIn
		}

		added, err := store.ImportAppliance(ctx, db, in)
		if err != nil {
			return imported, err
		}
		if added {
			imported++
		}
	}
	return imported, nil
}
