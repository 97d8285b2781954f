package impex

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mjhaler/appliancetrack/internal/store"
)

// ExportXLSX writes the active appliances as an Excel workbook, one row per
// appliance with the same columns as the CSV export.
func ExportXLSX(ctx context.Context, db *sql.DB, w io.Writer) error {
	appliances, err := store.ListActive(ctx, db)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	headers := []string{"Store", "Item Number", "Brand", "Model", "Serial", "Status", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, a := range appliances {
		values := []string{a.StoreName, a.ItemNumber, a.Brand, a.Model, a.Serial, a.Status, a.Notes}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
