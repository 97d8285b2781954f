package store

import (
	"context"
	"testing"

	"github.com/mjhaler/appliancetrack/internal/db"
	"github.com/mjhaler/appliancetrack/internal/model"
)

func TestFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A2", "LG", model.StatusChecked)
	addTestAppliance(t, database, "Borg", "B1", "GE", model.StatusIn)

	byStore, err := FilterByStore(ctx, database, "ACME")
	if err != nil {
		t.Fatalf("FilterByStore: %v", err)
	}
	if len(byStore) != 2 {
		t.Errorf("expected 2 appliances at Acme, got %d", len(byStore))
	}

	byStatus, _ := FilterByStatus(ctx, database, model.StatusIn)
	if len(byStatus) != 2 {
		t.Errorf("expected 2 appliances with status In, got %d", len(byStatus))
	}

	byBrand, _ := FilterByBrand(ctx, database, "ge")
	if len(byBrand) != 2 {
		t.Errorf("expected 2 GE appliances, got %d", len(byBrand))
	}

	// Archived records drop out of filters.
	if err := ArchiveAppliance(ctx, database, "Acme", "A1"); err != nil {
		t.Fatalf("ArchiveAppliance: %v", err)
	}
	byBrand, _ = FilterByBrand(ctx, database, "GE")
	if len(byBrand) != 1 {
		t.Errorf("expected 1 active GE appliance after archiving, got %d", len(byBrand))
	}
}

func TestSearchSubstring(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "Whirlpool", model.StatusIn)
	addTestAppliance(t, database, "Borg", "B1", "GE", model.StatusPartsOrdered)

	results, err := Search(ctx, database, "whirl")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ItemNumber != "A1" {
		t.Errorf("expected brand substring match on A1, got %v", results)
	}

	// Status text matches too.
	results, _ = Search(ctx, database, "parts")
	if len(results) != 1 || results[0].ItemNumber != "B1" {
		t.Errorf("expected status substring match on B1, got %v", results)
	}

	// Archived records never match.
	ArchiveAppliance(ctx, database, "Acme", "A1")
	results, _ = Search(ctx, database, "whirl")
	if len(results) != 0 {
		t.Errorf("archived appliance matched search: %v", results)
	}
}

func TestReportByStore(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusChecked)
	addTestAppliance(t, database, "Acme", "A2", "LG", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A3", "GE", model.StatusIn)
	addTestAppliance(t, database, "Borg", "B1", "GE", model.StatusIn)

	groups, err := ReportByStore(ctx, database, "acme")
	if err != nil {
		t.Fatalf("ReportByStore: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 status groups, got %d", len(groups))
	}
	// Groups follow vocabulary order: In before Checked.
	if groups[0].Status != model.StatusIn || len(groups[0].Appliances) != 2 {
		t.Errorf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Status != model.StatusChecked || len(groups[1].Appliances) != 1 {
		t.Errorf("unexpected second group: %+v", groups[1])
	}
}

func TestSummaryByStatusCountsArchived(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A2", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A3", "GE", model.StatusChecked)
	ArchiveAppliance(ctx, database, "Acme", "A2")

	summary, err := SummaryByStatus(ctx, database)
	if err != nil {
		t.Fatalf("SummaryByStatus: %v", err)
	}
	counts := make(map[string]int)
	for _, s := range summary {
		counts[s.Status] = s.Count
	}
	// The summary covers everything in storage, archived included.
	if counts[model.StatusIn] != 2 {
		t.Errorf("expected 2 In (1 active + 1 archived), got %d", counts[model.StatusIn])
	}
	if counts[model.StatusChecked] != 1 {
		t.Errorf("expected 1 Checked, got %d", counts[model.StatusChecked])
	}
}

func TestSummaryReflectsStatusChange(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	if _, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Status: strPtr(model.StatusRepaired),
	}); err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}

	summary, _ := SummaryByStatus(ctx, database)
	if len(summary) != 1 || summary[0].Status != model.StatusRepaired || summary[0].Count != 1 {
		t.Errorf("summary does not reflect status change: %+v", summary)
	}
}

func TestSearchInvoices(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusDelivered)
	addTestAppliance(t, database, "Acme", "A2", "GE", model.StatusLoaded)
	addTestAppliance(t, database, "Acme", "A3", "GE", model.StatusIn)

	SetInvoice(ctx, database, "Acme", "A1", "inv-2026-001.pdf", nil, "")
	SetInvoice(ctx, database, "Acme", "A2", "inv-2026-002.pdf", nil, "")

	// Empty query returns everything with an invoice.
	all, err := SearchInvoices(ctx, database, "")
	if err != nil {
		t.Fatalf("SearchInvoices: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 appliances with invoices, got %d", len(all))
	}

	one, _ := SearchInvoices(ctx, database, "001")
	if len(one) != 1 || one[0].ItemNumber != "A1" {
		t.Errorf("expected invoice substring match on A1, got %v", one)
	}

	// Archived appliances keep showing up in invoice searches.
	ArchiveAppliance(ctx, database, "Acme", "A1")
	all, _ = SearchInvoices(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("archived appliance dropped from invoice search: got %d", len(all))
	}
}

func TestListStoresAndDashboard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Borg", "B1", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A2", "GE", model.StatusChecked)

	stores, err := ListStores(ctx, database)
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(stores) != 2 || stores[0] != "Acme" || stores[1] != "Borg" {
		t.Errorf("unexpected store list: %v", stores)
	}

	summary, err := DashboardSummary(ctx, database)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 store summaries, got %d", len(summary))
	}
	if summary[0].Store != "Acme" || summary[0].Counts[model.StatusIn] != 1 || summary[0].Counts[model.StatusChecked] != 1 {
		t.Errorf("unexpected Acme summary: %+v", summary[0])
	}
}
