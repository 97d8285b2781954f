package impex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// ExportJSON writes the whole collection, active and archived, with embedded
// status histories.
func ExportJSON(ctx context.Context, db *sql.DB, w io.Writer) error {
	snapshot, err := store.DumpAll(ctx, db)
	if err != nil {
		return err
	}
	if snapshot == nil {
		snapshot = []model.Appliance{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ImportJSON replaces the whole collection with the decoded snapshot.
func ImportJSON(ctx context.Context, db *sql.DB, r io.Reader) error {
	var snapshot []model.Appliance
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	return store.ReplaceAll(ctx, db, snapshot)
}

// SaveFile writes the JSON snapshot to a file.
func SaveFile(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	if err := ExportJSON(ctx, db, f); err != nil {
		return err
	}
	return f.Close()
}

// LoadFile replaces the collection with a JSON snapshot from a file. A
// missing file is not an error: the collection starts empty.
func LoadFile(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return store.ReplaceAll(ctx, db, nil)
	}
	if err != nil {
		return fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	return ImportJSON(ctx, db, f)
}

// Restore replaces the collection from a backup file. Unlike LoadFile, a
// missing backup is an error the caller reports; the current collection is
// left untouched.
func Restore(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()

	return ImportJSON(ctx, db, f)
}
