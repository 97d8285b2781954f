package store

import (
	"context"
	"testing"

	"github.com/mjhaler/appliancetrack/internal/db"
	"github.com/mjhaler/appliancetrack/internal/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{Status: strPtr(model.StatusChecked)})
	addTestAppliance(t, database, "Borg", "B1", "LG", model.StatusLoaded)
	ArchiveAppliance(ctx, database, "Borg", "B1")

	snapshot, err := DumpAll(ctx, database)
	if err != nil {
		t.Fatalf("DumpAll: %v", err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 appliances in snapshot, got %d", len(snapshot))
	}
	if len(snapshot[0].History) != 2 {
		t.Errorf("expected embedded history of length 2, got %d", len(snapshot[0].History))
	}
	if !snapshot[1].Archived {
		t.Error("archive state lost in snapshot")
	}

	// Restore into a fresh database.
	restored := db.NewTestDB(t)
	if err := ReplaceAll(ctx, restored, snapshot); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	a, err := GetAppliance(ctx, restored, "Acme", "A1")
	if err != nil {
		t.Fatalf("GetAppliance after restore: %v", err)
	}
	if a.Status != model.StatusChecked {
		t.Errorf("status lost in restore: %q", a.Status)
	}
	history, _ := GetHistory(ctx, restored, a.ID)
	if len(history) != 2 {
		t.Errorf("history lost in restore: %d entries", len(history))
	}

	archived, _ := ListArchived(ctx, restored)
	if len(archived) != 1 {
		t.Errorf("archive partition lost in restore: %d archived", len(archived))
	}
}

func TestSnapshotKeepsInvoices(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusDelivered)
	pdf := []byte("%PDF-1.4 invoice body")
	if err := SetInvoice(ctx, database, "Acme", "A1", "inv.pdf", pdf, "application/pdf"); err != nil {
		t.Fatalf("SetInvoice: %v", err)
	}
	addTestAppliance(t, database, "Borg", "B1", "LG", model.StatusIn)

	snapshot, err := DumpAll(ctx, database)
	if err != nil {
		t.Fatalf("DumpAll: %v", err)
	}
	if string(snapshot[0].InvoiceData) != string(pdf) || snapshot[0].InvoiceMIME != "application/pdf" {
		t.Errorf("invoice not embedded in snapshot: %d bytes, mime %q",
			len(snapshot[0].InvoiceData), snapshot[0].InvoiceMIME)
	}
	if len(snapshot[1].InvoiceData) != 0 {
		t.Errorf("appliance without invoice got %d bytes of data", len(snapshot[1].InvoiceData))
	}

	restored := db.NewTestDB(t)
	if err := ReplaceAll(ctx, restored, snapshot); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	data, mime, filename, err := GetInvoice(ctx, restored, "Acme", "A1")
	if err != nil {
		t.Fatalf("GetInvoice after restore: %v", err)
	}
	if filename != "inv.pdf" {
		t.Errorf("invoice filename lost in restore: %q", filename)
	}
	if mime != "application/pdf" {
		t.Errorf("invoice mime lost in restore: %q", mime)
	}
	if string(data) != string(pdf) {
		t.Errorf("invoice data lost in restore: %d bytes", len(data))
	}
}

func TestReplaceAllReplacesEverything(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Old", "O1", "GE", model.StatusIn)

	// Restoring an empty snapshot wipes the collection. No merging.
	if err := ReplaceAll(ctx, database, nil); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	active, _ := ListActive(ctx, database)
	archived, _ := ListArchived(ctx, database)
	if len(active) != 0 || len(archived) != 0 {
		t.Errorf("restore did not replace collection: %d active, %d archived", len(active), len(archived))
	}
}
