package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mjhaler/appliancetrack/internal/model"
)

// applianceColumns is the column list matched by scanAppliance.
const applianceColumns = `id, store_name, item_number, brand, model, serial,
	status, notes, archived, invoice_file, created_at, last_updated`

// ApplianceInput holds the fields for a new appliance.
type ApplianceInput struct {
	StoreName  string
	ItemNumber string
	Brand      string
	Model      string
	Serial     string
	Status     string
	Notes      string
}

func (in *ApplianceInput) validate() error {
	required := map[string]string{
		"store_name":  in.StoreName,
		"item_number": in.ItemNumber,
		"brand":       in.Brand,
		"model":       in.Model,
		"serial":      in.Serial,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", ErrValidation, field)
		}
	}
	if !model.ValidStatus(in.Status) {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, in.Status)
	}
	return nil
}

// AppliancePatch holds a partial update. Nil fields keep the current value;
// a non-nil pointer to an empty string clears the field (only allowed for
// notes, required fields must stay non-blank).
type AppliancePatch struct {
	StoreName  *string
	ItemNumber *string
	Brand      *string
	Model      *string
	Serial     *string
	Status     *string
	Notes      *string
}

// CreateAppliance adds a new appliance. The record, its initial status
// history entry, and the audit entry are written in a single transaction.
func CreateAppliance(ctx context.Context, db *sql.DB, in ApplianceInput) (*model.Appliance, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	taken, err := identityTaken(ctx, tx, in.StoreName, in.ItemNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%s at %s: %w", in.ItemNumber, in.StoreName, ErrDuplicate)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO appliances (store_name, item_number, brand, model, serial, status, notes, created_at, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.StoreName, in.ItemNumber, in.Brand, in.Model, in.Serial, in.Status, in.Notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating appliance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting appliance id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO status_history (appliance_id, timestamp, status) VALUES (?, ?, ?)`,
		id, now, in.Status,
	); err != nil {
		return nil, fmt.Errorf("seeding status history: %w", err)
	}

	if err := logAction(ctx, tx, now, model.ActionAdd, in.ItemNumber+" at "+in.StoreName); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing appliance: %w", err)
	}

	return GetApplianceByID(ctx, db, id)
}

// GetAppliance returns an appliance by identity key. The store name matches
// case-insensitively, the item number exactly.
func GetAppliance(ctx context.Context, db *sql.DB, storeName, itemNumber string) (*model.Appliance, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances
		 WHERE lower(store_name) = lower(?) AND item_number = ?`,
		storeName, itemNumber,
	)
	a, err := scanAppliance(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s at %s: %w", itemNumber, storeName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting appliance: %w", err)
	}
	return a, nil
}

// GetApplianceByID returns an appliance by row ID.
func GetApplianceByID(ctx context.Context, db *sql.DB, id int64) (*model.Appliance, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances WHERE id = ?`, id,
	)
	a, err := scanAppliance(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("appliance %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting appliance: %w", err)
	}
	return a, nil
}

// UpdateAppliance applies a partial update to the appliance with the given
// identity key. Status changes append a status history entry. Identity key
// changes are re-checked for uniqueness inside the same transaction, so no
// transient duplicate state is ever observable.
func UpdateAppliance(ctx context.Context, db *sql.DB, storeName, itemNumber string, patch AppliancePatch) (*model.Appliance, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+applianceColumns+` FROM appliances
		 WHERE lower(store_name) = lower(?) AND item_number = ?`,
		storeName, itemNumber,
	)
	current, err := scanAppliance(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s at %s: %w", itemNumber, storeName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting appliance: %w", err)
	}

	next := *current
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&next.StoreName, patch.StoreName)
	apply(&next.ItemNumber, patch.ItemNumber)
	apply(&next.Brand, patch.Brand)
	apply(&next.Model, patch.Model)
	apply(&next.Serial, patch.Serial)
	apply(&next.Notes, patch.Notes)

	in := ApplianceInput{
		StoreName:  next.StoreName,
		ItemNumber: next.ItemNumber,
		Brand:      next.Brand,
		Model:      next.Model,
		Serial:     next.Serial,
		Status:     next.Status,
	}
	statusChanged := false
	if patch.Status != nil && *patch.Status != current.Status {
		in.Status = *patch.Status
		next.Status = *patch.Status
		statusChanged = true
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	if !next.SameKey(current.StoreName, current.ItemNumber) {
		taken, err := identityTaken(ctx, tx, next.StoreName, next.ItemNumber, current.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%s at %s: %w", next.ItemNumber, next.StoreName, ErrDuplicate)
		}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE appliances
		 SET store_name = ?, item_number = ?, brand = ?, model = ?, serial = ?,
		     status = ?, notes = ?, last_updated = ?
		 WHERE id = ?`,
		next.StoreName, next.ItemNumber, next.Brand, next.Model, next.Serial,
		next.Status, next.Notes, now, current.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating appliance: %w", err)
	}

	if statusChanged {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO status_history (appliance_id, timestamp, status) VALUES (?, ?, ?)`,
			current.ID, now, next.Status,
		); err != nil {
			return nil, fmt.Errorf("appending status history: %w", err)
		}
	}

	if err := logAction(ctx, tx, now, model.ActionEdit, next.ItemNumber+" at "+next.StoreName); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}

	return GetApplianceByID(ctx, db, current.ID)
}

// ArchiveAppliance moves an active appliance to the archive. Archived
// appliances stay in storage and keep their history, but are hidden from
// default listings and reports.
func ArchiveAppliance(ctx context.Context, db *sql.DB, storeName, itemNumber string) error {
	return setArchived(ctx, db, storeName, itemNumber, true)
}

// UnarchiveAppliance restores an archived appliance to the active set.
func UnarchiveAppliance(ctx context.Context, db *sql.DB, storeName, itemNumber string) error {
	return setArchived(ctx, db, storeName, itemNumber, false)
}

func setArchived(ctx context.Context, db *sql.DB, storeName, itemNumber string, archived bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var current bool
	err = tx.QueryRowContext(ctx,
		`SELECT id, archived FROM appliances
		 WHERE lower(store_name) = lower(?) AND item_number = ?`,
		storeName, itemNumber,
	).Scan(&id, &current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s at %s: %w", itemNumber, storeName, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting appliance: %w", err)
	}

	if current == archived {
		if archived {
			return fmt.Errorf("%s at %s: %w", itemNumber, storeName, ErrAlreadyArchived)
		}
		return fmt.Errorf("%s at %s: %w", itemNumber, storeName, ErrNotArchived)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE appliances SET archived = ?, last_updated = ? WHERE id = ?`,
		archived, now, id,
	); err != nil {
		return fmt.Errorf("updating archive state: %w", err)
	}

	action := model.ActionArchive
	if !archived {
		action = model.ActionUnarchive
	}
	if err := logAction(ctx, tx, now, action, itemNumber+" at "+storeName); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive change: %w", err)
	}
	return nil
}

// BulkArchive archives every active appliance at the given store with the
// given status. Returns the number of appliances archived. Each archived
// appliance gets its own audit entry.
func BulkArchive(ctx context.Context, db *sql.DB, storeName, status string) (int, error) {
	return bulkSetArchived(ctx, db, storeName, status, true)
}

// BulkUnarchive restores every archived appliance at the given store with
// the given status. Returns the number of appliances restored.
func BulkUnarchive(ctx context.Context, db *sql.DB, storeName, status string) (int, error) {
	return bulkSetArchived(ctx, db, storeName, status, false)
}

func bulkSetArchived(ctx context.Context, db *sql.DB, storeName, status string, archived bool) (int, error) {
	if !model.ValidStatus(status) {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, item_number, store_name FROM appliances
		 WHERE lower(store_name) = lower(?) AND status = ? AND archived = ?
		 ORDER BY id`,
		storeName, status, !archived,
	)
	if err != nil {
		return 0, fmt.Errorf("listing appliances for bulk change: %w", err)
	}

	type target struct {
		id         int64
		itemNumber string
		storeName  string
	}
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.id, &t.itemNumber, &t.storeName); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning appliance: %w", err)
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing appliances for bulk change: %w", err)
	}

	action := model.ActionArchive
	if !archived {
		action = model.ActionUnarchive
	}

	now := time.Now().UTC()
	for _, t := range targets {
		if _, err := tx.ExecContext(ctx,
			`UPDATE appliances SET archived = ?, last_updated = ? WHERE id = ?`,
			archived, now, t.id,
		); err != nil {
			return 0, fmt.Errorf("updating archive state: %w", err)
		}
		if err := logAction(ctx, tx, now, action, t.itemNumber+" at "+t.storeName); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing bulk change: %w", err)
	}
	return len(targets), nil
}

// ImportAppliance inserts a candidate parsed from an external source such as
// a CSV row. Unlike CreateAppliance it tolerates blank descriptive fields and
// skips identity collisions instead of failing: it returns false when an
// appliance with the same key already exists, archived or not.
func ImportAppliance(ctx context.Context, db *sql.DB, in ApplianceInput) (bool, error) {
	if strings.TrimSpace(in.StoreName) == "" || strings.TrimSpace(in.ItemNumber) == "" {
		return false, fmt.Errorf("%w: store_name and item_number", ErrValidation)
	}
	if !model.ValidStatus(in.Status) {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidStatus, in.Status)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	taken, err := identityTaken(ctx, tx, in.StoreName, in.ItemNumber, 0)
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO appliances (store_name, item_number, brand, model, serial, status, notes, created_at, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.StoreName, in.ItemNumber, in.Brand, in.Model, in.Serial, in.Status, in.Notes, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("importing appliance: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("getting appliance id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO status_history (appliance_id, timestamp, status) VALUES (?, ?, ?)`,
		id, now, in.Status,
	); err != nil {
		return false, fmt.Errorf("seeding status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing import: %w", err)
	}
	return true, nil
}

// SetInvoice attaches an invoice to an appliance. Invoices are only valid
// for appliances that are Loaded or Delivered.
func SetInvoice(ctx context.Context, db *sql.DB, storeName, itemNumber, filename string, data []byte, mime string) error {
	a, err := GetAppliance(ctx, db, storeName, itemNumber)
	if err != nil {
		return err
	}
	if !model.InvoiceAllowed(a.Status) {
		return fmt.Errorf("invoice not allowed for status %q: %w", a.Status, ErrValidation)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE appliances SET invoice_file = ?, invoice_data = ?, invoice_mime = ?, last_updated = ?
		 WHERE id = ?`,
		filename, data, mime, time.Now().UTC(), a.ID,
	)
	if err != nil {
		return fmt.Errorf("setting invoice: %w", err)
	}
	return nil
}

// GetInvoice returns an appliance's stored invoice data, MIME type, and
// filename. Data is nil when no invoice is attached.
func GetInvoice(ctx context.Context, db *sql.DB, storeName, itemNumber string) ([]byte, string, string, error) {
	var data []byte
	var mime, filename sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT invoice_data, invoice_mime, invoice_file FROM appliances
		 WHERE lower(store_name) = lower(?) AND item_number = ?`,
		storeName, itemNumber,
	).Scan(&data, &mime, &filename)
	if err == sql.ErrNoRows {
		return nil, "", "", fmt.Errorf("%s at %s: %w", itemNumber, storeName, ErrNotFound)
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("getting invoice: %w", err)
	}
	return data, mime.String, filename.String, nil
}

// identityTaken checks whether an appliance other than excludeID already
// uses the given identity key, archived or not.
func identityTaken(ctx context.Context, tx *sql.Tx, storeName, itemNumber string, excludeID int64) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appliances
		 WHERE lower(store_name) = lower(?) AND item_number = ? AND id != ?`,
		storeName, itemNumber, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for duplicate key: %w", err)
	}
	return count > 0, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppliance(row rowScanner) (*model.Appliance, error) {
	a := &model.Appliance{}
	var notes, invoiceFile sql.NullString
	err := row.Scan(&a.ID, &a.StoreName, &a.ItemNumber, &a.Brand, &a.Model, &a.Serial,
		&a.Status, &notes, &a.Archived, &invoiceFile, &a.CreatedAt, &a.LastUpdated)
	if err != nil {
		return nil, err
	}
	a.Notes = notes.String
	a.InvoiceFile = invoiceFile.String
	return a, nil
}

func scanAppliances(rows *sql.Rows) ([]model.Appliance, error) {
	var appliances []model.Appliance
	for rows.Next() {
		a, err := scanAppliance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appliance: %w", err)
		}
		appliances = append(appliances, *a)
	}
	return appliances, rows.Err()
}
