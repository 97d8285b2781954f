package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mjhaler/appliancetrack/internal/db"
	"github.com/mjhaler/appliancetrack/internal/model"
)

func strPtr(s string) *string { return &s }

func addTestAppliance(t *testing.T, database *sql.DB, storeName, itemNumber, brand, status string) *model.Appliance {
	t.Helper()
	a, err := CreateAppliance(context.Background(), database, ApplianceInput{
		StoreName:  storeName,
		ItemNumber: itemNumber,
		Brand:      brand,
		Model:      "WM100",
		Serial:     "SN-" + itemNumber,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("CreateAppliance(%s/%s): %v", storeName, itemNumber, err)
	}
	return a
}

func TestCreateAndGetAppliance(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, err := CreateAppliance(ctx, database, ApplianceInput{
		StoreName:  "Acme",
		ItemNumber: "A1",
		Brand:      "GE",
		Model:      "WM100",
		Serial:     "SN1",
		Status:     model.StatusIn,
		Notes:      "scratch on door",
	})
	if err != nil {
		t.Fatalf("CreateAppliance: %v", err)
	}
	if created.Archived {
		t.Error("new appliance should not be archived")
	}

	got, err := GetAppliance(ctx, database, "acme", "A1")
	if err != nil {
		t.Fatalf("GetAppliance: %v", err)
	}
	if got.Brand != "GE" || got.Model != "WM100" || got.Serial != "SN1" || got.Notes != "scratch on door" {
		t.Errorf("fields do not match input: %+v", got)
	}
	if got.Status != model.StatusIn {
		t.Errorf("expected status %q, got %q", model.StatusIn, got.Status)
	}

	history, err := GetHistory(ctx, database, got.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected initial history of length 1, got %d", len(history))
	}
	if history[0].Status != model.StatusIn {
		t.Errorf("expected seeded history status %q, got %q", model.StatusIn, history[0].Status)
	}
}

func TestCreateDuplicateKey(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)

	// Same key with different store name casing must collide.
	_, err := CreateAppliance(ctx, database, ApplianceInput{
		StoreName:  "ACME",
		ItemNumber: "A1",
		Brand:      "LG",
		Model:      "X",
		Serial:     "SN2",
		Status:     model.StatusIn,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	active, _ := ListActive(ctx, database)
	if len(active) != 1 {
		t.Errorf("store size changed after failed add: %d records", len(active))
	}

	// Same item number at a different store is fine.
	if _, err := CreateAppliance(ctx, database, ApplianceInput{
		StoreName:  "Borg",
		ItemNumber: "A1",
		Brand:      "LG",
		Model:      "X",
		Serial:     "SN3",
		Status:     model.StatusIn,
	}); err != nil {
		t.Errorf("same item number at different store should succeed: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateAppliance(ctx, database, ApplianceInput{
		StoreName:  "Acme",
		ItemNumber: "A1",
		Brand:      "",
		Model:      "X",
		Serial:     "SN1",
		Status:     model.StatusIn,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for blank brand, got %v", err)
	}

	_, err = CreateAppliance(ctx, database, ApplianceInput{
		StoreName:  "Acme",
		ItemNumber: "A1",
		Brand:      "GE",
		Model:      "X",
		Serial:     "SN1",
		Status:     "Broken",
	})
	if !errors.Is(err, model.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestGetApplianceNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetAppliance(context.Background(), database, "Acme", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePatchSemantics(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)

	// Nil fields keep current values.
	updated, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Brand: strPtr("LG"),
	})
	if err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	if updated.Brand != "LG" {
		t.Errorf("expected brand LG, got %q", updated.Brand)
	}
	if updated.Model != "WM100" || updated.Serial != "SN-A1" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	// An explicit empty string clears notes.
	updated, err = UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Notes: strPtr(""),
	})
	if err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	if updated.Notes != "" {
		t.Errorf("expected cleared notes, got %q", updated.Notes)
	}

	// Clearing a required field is a validation error.
	_, err = UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Serial: strPtr(""),
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for cleared serial, got %v", err)
	}
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)

	updated, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Status: strPtr(model.StatusChecked),
	})
	if err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	if updated.Status != model.StatusChecked {
		t.Errorf("expected status Checked, got %q", updated.Status)
	}

	history, _ := GetHistory(ctx, database, a.ID)
	if len(history) != 2 {
		t.Fatalf("expected history of length 2, got %d", len(history))
	}
	if history[0].Status != model.StatusIn || history[1].Status != model.StatusChecked {
		t.Errorf("unexpected history order: %v", history)
	}

	// Setting the same status again must not append.
	if _, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Status: strPtr(model.StatusChecked),
	}); err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	history, _ = GetHistory(ctx, database, a.ID)
	if len(history) != 2 {
		t.Errorf("unchanged status appended history: length %d", len(history))
	}
}

func TestUpdateIdentityMove(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A2", "LG", model.StatusIn)

	// Moving onto an occupied key must fail with no partial change.
	_, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		ItemNumber: strPtr("A2"),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := GetAppliance(ctx, database, "Acme", "A1"); err != nil {
		t.Errorf("appliance lost its old key after failed move: %v", err)
	}

	// Moving to a free key works and the old key is gone.
	if _, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		StoreName:  strPtr("Borg"),
		ItemNumber: strPtr("B7"),
	}); err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	if _, err := GetAppliance(ctx, database, "Borg", "B7"); err != nil {
		t.Errorf("appliance not found under new key: %v", err)
	}
	if _, err := GetAppliance(ctx, database, "Acme", "A1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old key still resolves after move: %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := UpdateAppliance(context.Background(), database, "Acme", "nope", AppliancePatch{
		Brand: strPtr("GE"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArchiveUnarchiveRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	before, _ := GetHistory(ctx, database, a.ID)

	if err := ArchiveAppliance(ctx, database, "Acme", "A1"); err != nil {
		t.Fatalf("ArchiveAppliance: %v", err)
	}
	active, _ := ListActive(ctx, database)
	if len(active) != 0 {
		t.Errorf("archived appliance still listed as active")
	}
	archived, _ := ListArchived(ctx, database)
	if len(archived) != 1 {
		t.Errorf("expected 1 archived appliance, got %d", len(archived))
	}

	// Double archive is an error.
	if err := ArchiveAppliance(ctx, database, "Acme", "A1"); !errors.Is(err, ErrAlreadyArchived) {
		t.Errorf("expected ErrAlreadyArchived, got %v", err)
	}

	if err := UnarchiveAppliance(ctx, database, "Acme", "A1"); err != nil {
		t.Fatalf("UnarchiveAppliance: %v", err)
	}
	active, _ = ListActive(ctx, database)
	if len(active) != 1 {
		t.Errorf("expected restored appliance in active list")
	}

	// Identity and history survive the round trip.
	got, err := GetAppliance(ctx, database, "Acme", "A1")
	if err != nil {
		t.Fatalf("GetAppliance after round trip: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("identity changed across archive round trip")
	}
	after, _ := GetHistory(ctx, database, a.ID)
	if len(after) != len(before) {
		t.Errorf("history length changed across archive round trip: %d -> %d", len(before), len(after))
	}
}

func TestUnarchiveErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := UnarchiveAppliance(ctx, database, "Acme", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	if err := UnarchiveAppliance(ctx, database, "Acme", "A1"); !errors.Is(err, ErrNotArchived) {
		t.Errorf("expected ErrNotArchived for active appliance, got %v", err)
	}
}

func TestBulkArchive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A2", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A3", "GE", model.StatusIn)
	addTestAppliance(t, database, "Acme", "A4", "GE", model.StatusChecked)
	addTestAppliance(t, database, "Acme", "A5", "GE", model.StatusChecked)

	count, err := BulkArchive(ctx, database, "acme", model.StatusIn)
	if err != nil {
		t.Fatalf("BulkArchive: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 archived, got %d", count)
	}

	active, _ := ListActive(ctx, database)
	if len(active) != 2 {
		t.Errorf("expected 2 active appliances left, got %d", len(active))
	}

	// Repeating matches nothing: everything eligible is already archived.
	count, err = BulkArchive(ctx, database, "acme", model.StatusIn)
	if err != nil {
		t.Fatalf("repeat BulkArchive: %v", err)
	}
	if count != 0 {
		t.Errorf("expected repeat count 0, got %d", count)
	}

	count, err = BulkUnarchive(ctx, database, "Acme", model.StatusIn)
	if err != nil {
		t.Fatalf("BulkUnarchive: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 restored, got %d", count)
	}
}

func TestInvoiceGating(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)

	err := SetInvoice(ctx, database, "Acme", "A1", "inv-001.pdf", []byte("pdf"), "application/pdf")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for status In, got %v", err)
	}

	if _, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Status: strPtr(model.StatusDelivered),
	}); err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	if err := SetInvoice(ctx, database, "Acme", "A1", "inv-001.pdf", []byte("pdf"), "application/pdf"); err != nil {
		t.Fatalf("SetInvoice after Delivered: %v", err)
	}

	data, mime, filename, err := GetInvoice(ctx, database, "Acme", "A1")
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if string(data) != "pdf" || mime != "application/pdf" || filename != "inv-001.pdf" {
		t.Errorf("unexpected invoice data: %q %q %q", data, mime, filename)
	}
}

// Full lifecycle walk: add, duplicate, status change, archive, unarchive.
func TestApplianceLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := addTestAppliance(t, database, "Acme", "A1", "GE", model.StatusIn)

	_, err := CreateAppliance(ctx, database, ApplianceInput{
		StoreName: "Acme", ItemNumber: "A1", Brand: "GE", Model: "X", Serial: "S", Status: model.StatusIn,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if _, err := UpdateAppliance(ctx, database, "Acme", "A1", AppliancePatch{
		Status: strPtr(model.StatusChecked),
	}); err != nil {
		t.Fatalf("UpdateAppliance: %v", err)
	}
	history, _ := GetHistory(ctx, database, a.ID)
	if len(history) != 2 || history[0].Status != model.StatusIn || history[1].Status != model.StatusChecked {
		t.Fatalf("unexpected history: %v", history)
	}

	if err := ArchiveAppliance(ctx, database, "Acme", "A1"); err != nil {
		t.Fatalf("ArchiveAppliance: %v", err)
	}
	active, _ := ListActive(ctx, database)
	archived, _ := ListArchived(ctx, database)
	if len(active) != 0 || len(archived) != 1 {
		t.Fatalf("expected 0 active / 1 archived, got %d / %d", len(active), len(archived))
	}

	if err := UnarchiveAppliance(ctx, database, "Acme", "A1"); err != nil {
		t.Fatalf("UnarchiveAppliance: %v", err)
	}
	active, _ = ListActive(ctx, database)
	if len(active) != 1 {
		t.Fatalf("expected appliance back in active list")
	}
	history, _ = GetHistory(ctx, database, a.ID)
	if len(history) != 2 {
		t.Errorf("history changed during archive round trip: %v", history)
	}
}
