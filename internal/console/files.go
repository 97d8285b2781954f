package console

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"

	"github.com/mjhaler/appliancetrack/internal/impex"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// Default filenames, matching the web export names.
const (
	saveFile     = "appliance_inventory.json"
	csvFile      = "appliances.csv"
	auditCSVFile = "audit_log.csv"
)

// fileOptions drives the file submenu until the user goes back.
func (c *Console) fileOptions(ctx context.Context) error {
	for {
		c.printf("\nFile Options:\n")
		c.printf("1. Save\n")
		c.printf("2. Load\n")
		c.printf("3. Export to CSV\n")
		c.printf("4. Import from CSV\n")
		c.printf("5. Backup Inventory\n")
		c.printf("6. Restore Inventory\n")
		c.printf("7. Export Audit Log to CSV\n")
		c.printf("8. Archive Appliance\n")
		c.printf("9. View Archived Appliances\n")
		c.printf("10. Bulk Archive By Store/Status\n")
		c.printf("11. Bulk Unarchive By Store/Status\n")
		c.printf("12. Back to Main Menu\n")

		choice, ok := c.prompt("Select an option: ")
		if !ok {
			return io.EOF
		}

		var err error
		switch choice {
		case "1":
			err = c.save(ctx)
		case "2":
			err = c.load(ctx)
		case "3":
			err = c.exportCSV(ctx)
		case "4":
			err = c.importCSV(ctx)
		case "5":
			err = c.backup(ctx)
		case "6":
			err = c.restore(ctx)
		case "7":
			err = c.exportAuditCSV(ctx)
		case "8":
			err = c.archive(ctx)
		case "9":
			err = c.viewArchived(ctx)
		case "10":
			err = c.bulkArchive(ctx)
		case "11":
			err = c.bulkUnarchive(ctx)
		case "12":
			return nil
		default:
			c.printf("Invalid choice.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) save(ctx context.Context) error {
	if err := impex.SaveFile(ctx, c.db, saveFile); err != nil {
		return err
	}
	c.printf("Data saved!\n")
	return nil
}

func (c *Console) load(ctx context.Context) error {
	err := impex.LoadFile(ctx, c.db, saveFile)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(saveFile); statErr != nil {
		c.printf("No saved file found. Starting empty.\n")
		return nil
	}
	c.printf("Data loaded.\n")
	return nil
}

func (c *Console) exportCSV(ctx context.Context) error {
	f, err := os.Create(csvFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := impex.ExportCSV(ctx, c.db, f); err != nil {
		return err
	}
	c.printf("Inventory exported to %q\n", csvFile)
	return nil
}

func (c *Console) importCSV(ctx context.Context) error {
	filename, ok := c.prompt("Enter CSV filename to import: ")
	if !ok {
		return io.EOF
	}
	if filename == "" {
		c.printf("Import canceled.\n")
		return nil
	}

	f, err := os.Open(filename)
	if err != nil {
		c.printf("File %q not found.\n", filename)
		return nil
	}
	defer f.Close()

	count, err := impex.ImportCSV(ctx, c.db, f)
	if err != nil {
		c.printf("The file could not be read as CSV.\n")
		return nil
	}
	c.printf("%d appliances imported.\n", count)
	return nil
}

func (c *Console) backup(ctx context.Context) error {
	filename, ok := c.prompt("Enter filename for backup (e.g., backup.json): ")
	if !ok {
		return io.EOF
	}
	if filename == "" {
		c.printf("Backup canceled.\n")
		return nil
	}

	if err := impex.SaveFile(ctx, c.db, filename); err != nil {
		return err
	}
	c.printf("Backup saved as %q\n", filename)
	return nil
}

func (c *Console) restore(ctx context.Context) error {
	filename, ok := c.prompt("Enter filename to restore from: ")
	if !ok {
		return io.EOF
	}
	if filename == "" {
		c.printf("Restore canceled.\n")
		return nil
	}

	if err := impex.Restore(ctx, c.db, filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.printf("File %q not found.\n", filename)
			return nil
		}
		return err
	}
	c.printf("Inventory restored from %q\n", filename)
	return nil
}

func (c *Console) exportAuditCSV(ctx context.Context) error {
	entries, err := store.ListAuditLog(ctx, c.db)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.printf("No audit log entries to export.\n")
		return nil
	}

	f, err := os.Create(auditCSVFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := impex.ExportAuditCSV(ctx, c.db, f); err != nil {
		return err
	}
	c.printf("Audit log exported to %q\n", auditCSVFile)
	return nil
}

func (c *Console) archive(ctx context.Context) error {
	itemNumber, storeName, err := c.promptKey("archive")
	if err != nil {
		return err
	}

	if err := store.ArchiveAppliance(ctx, c.db, storeName, itemNumber); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.printf("Appliance not found.\n")
		case errors.Is(err, store.ErrAlreadyArchived):
			c.printf("Appliance is already archived.\n")
		default:
			return err
		}
		return nil
	}

	c.printf("Appliance archived! (It is now hidden from regular lists and reports)\n")
	return nil
}

func (c *Console) viewArchived(ctx context.Context) error {
	appliances, err := store.ListArchived(ctx, c.db)
	if err != nil {
		return err
	}

	c.printf("\nArchived Appliances:\n")
	if len(appliances) == 0 {
		c.printf("No archived appliances.\n")
		return nil
	}
	for _, a := range appliances {
		c.printf("%s | %s | %s | %s | %s\n",
			a.StoreName, a.ItemNumber, a.Brand, a.Model, a.Status)
	}
	return nil
}

func (c *Console) bulkArchive(ctx context.Context) error {
	return c.bulk(ctx, store.BulkArchive, "archived")
}

func (c *Console) bulkUnarchive(ctx context.Context) error {
	return c.bulk(ctx, store.BulkUnarchive, "restored from archive")
}

func (c *Console) bulk(ctx context.Context, op func(context.Context, *sql.DB, string, string) (int, error), done string) error {
	storeName, ok := c.prompt("Enter Store Name: ")
	if !ok {
		return io.EOF
	}

	status, err := c.chooseStatus()
	if err != nil {
		return err
	}

	count, err := op(ctx, c.db, storeName, status)
	if err != nil {
		return err
	}
	c.printf("%d appliances %s.\n", count, done)
	return nil
}
