package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mjhaler/appliancetrack/internal/model"
)

// ListActive returns all active appliances in insertion order.
func ListActive(ctx context.Context, db *sql.DB) ([]model.Appliance, error) {
	return listByArchived(ctx, db, false)
}

// ListArchived returns all archived appliances in insertion order.
func ListArchived(ctx context.Context, db *sql.DB) ([]model.Appliance, error) {
	return listByArchived(ctx, db, true)
}

func listByArchived(ctx context.Context, db *sql.DB, archived bool) ([]model.Appliance, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances WHERE archived = ? ORDER BY id`,
		archived,
	)
	if err != nil {
		return nil, fmt.Errorf("listing appliances: %w", err)
	}
	defer rows.Close()
	return scanAppliances(rows)
}

// FilterByStore returns active appliances for a store, matched
// case-insensitively.
func FilterByStore(ctx context.Context, db *sql.DB, storeName string) ([]model.Appliance, error) {
	return filterActive(ctx, db, `lower(store_name) = lower(?)`, storeName)
}

// FilterByStatus returns active appliances with the given status.
func FilterByStatus(ctx context.Context, db *sql.DB, status string) ([]model.Appliance, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return filterActive(ctx, db, `status = ?`, status)
}

// FilterByBrand returns active appliances of a brand, matched
// case-insensitively.
func FilterByBrand(ctx context.Context, db *sql.DB, brand string) ([]model.Appliance, error) {
	return filterActive(ctx, db, `lower(brand) = lower(?)`, brand)
}

func filterActive(ctx context.Context, db *sql.DB, where string, arg any) ([]model.Appliance, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances
		 WHERE archived = 0 AND `+where+` ORDER BY id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("filtering appliances: %w", err)
	}
	defer rows.Close()
	return scanAppliances(rows)
}

// Search returns active appliances where the query matches any of store name,
// brand, model, serial, item number, or status as a case-insensitive
// substring.
func Search(ctx context.Context, db *sql.DB, query string) ([]model.Appliance, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances
		 WHERE archived = 0 AND (
		     lower(store_name) LIKE ? OR lower(brand) LIKE ? OR lower(model) LIKE ?
		     OR lower(serial) LIKE ? OR lower(item_number) LIKE ? OR lower(status) LIKE ?
		 ) ORDER BY id`,
		pattern, pattern, pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching appliances: %w", err)
	}
	defer rows.Close()
	return scanAppliances(rows)
}

// StatusGroup is one group of a per-store report.
type StatusGroup struct {
	Status     string
	Appliances []model.Appliance
}

// ReportByStore returns the active appliances for a store grouped by status.
// Groups follow the status vocabulary order; empty groups are omitted.
func ReportByStore(ctx context.Context, db *sql.DB, storeName string) ([]StatusGroup, error) {
	appliances, err := FilterByStore(ctx, db, storeName)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string][]model.Appliance)
	for _, a := range appliances {
		byStatus[a.Status] = append(byStatus[a.Status], a)
	}

	var groups []StatusGroup
	for _, status := range model.StatusOptions {
		if apps, ok := byStatus[status]; ok {
			groups = append(groups, StatusGroup{Status: status, Appliances: apps})
		}
	}
	return groups, nil
}

// StatusCount is one row of the inventory summary.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SummaryByStatus counts appliances per status, in vocabulary order.
// Archived appliances are counted too: the summary describes everything in
// storage, while listings and filters describe the active working set.
func SummaryByStatus(ctx context.Context, db *sql.DB) ([]StatusCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT lower(status), COUNT(*) FROM appliances GROUP BY lower(status)`,
	)
	if err != nil {
		return nil, fmt.Errorf("summarizing by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var summary []StatusCount
	for _, status := range model.StatusOptions {
		if count, ok := counts[strings.ToLower(status)]; ok {
			summary = append(summary, StatusCount{Status: status, Count: count})
		}
	}
	return summary, nil
}

// SearchInvoices returns appliances whose invoice filename contains the
// query as a case-insensitive substring. An empty query returns every
// appliance that has an invoice. Archived appliances are included: invoices
// outlive the appliance's visibility.
func SearchInvoices(ctx context.Context, db *sql.DB, query string) ([]model.Appliance, error) {
	var rows *sql.Rows
	var err error

	if query == "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+applianceColumns+` FROM appliances
			 WHERE invoice_file IS NOT NULL AND invoice_file != '' ORDER BY id`,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+applianceColumns+` FROM appliances
			 WHERE lower(invoice_file) LIKE ? ORDER BY id`,
			"%"+strings.ToLower(query)+"%",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("searching invoices: %w", err)
	}
	defer rows.Close()
	return scanAppliances(rows)
}

// ListStores returns the distinct store names across all appliances, sorted.
func ListStores(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT store_name FROM appliances ORDER BY store_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	defer rows.Close()

	var stores []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning store name: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// StoreSummary is one store's per-status counts on the admin dashboard.
type StoreSummary struct {
	Store  string
	Counts map[string]int
}

// DashboardSummary returns per-store, per-status counts of active
// appliances, sorted by store name.
func DashboardSummary(ctx context.Context, db *sql.DB) ([]StoreSummary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT store_name, status, COUNT(*) FROM appliances
		 WHERE archived = 0 GROUP BY store_name, status ORDER BY store_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("summarizing dashboard: %w", err)
	}
	defer rows.Close()

	var summaries []StoreSummary
	index := make(map[string]int)
	for rows.Next() {
		var storeName, status string
		var count int
		if err := rows.Scan(&storeName, &status, &count); err != nil {
			return nil, fmt.Errorf("scanning dashboard row: %w", err)
		}
		i, ok := index[storeName]
		if !ok {
			i = len(summaries)
			index[storeName] = i
			summaries = append(summaries, StoreSummary{Store: storeName, Counts: make(map[string]int)})
		}
		summaries[i].Counts[status] = count
	}
	return summaries, rows.Err()
}
