package console

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mjhaler/appliancetrack/internal/impex"
	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// Console is the interactive prompt-loop front end. It reads commands from
// in, writes prompts and results to out, and operates on the shared SQLite
// store.
type Console struct {
	db  *sql.DB
	in  *bufio.Scanner
	out io.Writer
}

// New creates a console bound to the given streams.
func New(db *sql.DB, in io.Reader, out io.Writer) *Console {
	return &Console{
		db:  db,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run drives the main menu until the user quits or input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.printf("\n1. Add Appliance\n")
		c.printf("2. List Appliances\n")
		c.printf("3. Edit Appliance\n")
		c.printf("4. Search for Appliance\n")
		c.printf("5. Inventory Summary\n")
		c.printf("6. View Appliance Details\n")
		c.printf("7. File Options\n")
		c.printf("8. Store-Based Report\n")
		c.printf("9. View Audit Log\n")
		c.printf("10. Quit\n")

		choice, ok := c.prompt("Select an option: ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = c.addAppliance(ctx)
		case "2":
			err = c.listAppliances(ctx)
		case "3":
			err = c.editAppliance(ctx)
		case "4":
			err = c.advancedFilter(ctx)
		case "5":
			err = c.summary(ctx)
		case "6":
			err = c.details(ctx)
		case "7":
			err = c.fileOptions(ctx)
		case "8":
			err = c.storeReport(ctx)
		case "9":
			err = c.auditLog(ctx)
		case "10":
			c.printf("Goodbye!\n")
			return nil
		default:
			c.printf("Invalid choice, try again.\n")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt reads one line. The second return is false once input is exhausted.
func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// promptRequired re-prompts until the user enters a non-blank value.
func (c *Console) promptRequired(label string) (string, error) {
	for {
		value, ok := c.prompt(label)
		if !ok {
			return "", io.EOF
		}
		if value != "" {
			return value, nil
		}
		c.printf("This field is required.\n")
	}
}

// chooseStatus shows the numbered status vocabulary and re-prompts until a
// valid number is entered.
func (c *Console) chooseStatus() (string, error) {
	for {
		c.printf("\nSelect a status:\n")
		for i, status := range model.StatusOptions {
			c.printf("%d. %s\n", i+1, status)
		}
		value, ok := c.prompt("Enter the status number: ")
		if !ok {
			return "", io.EOF
		}
		n, err := strconv.Atoi(value)
		if err == nil && n >= 1 && n <= len(model.StatusOptions) {
			return model.StatusOptions[n-1], nil
		}
		c.printf("Invalid choice, try again.\n")
	}
}

// promptKey asks for the identity key of a record.
func (c *Console) promptKey(verb string) (itemNumber, storeName string, err error) {
	itemNumber, ok := c.prompt("Enter Store Item Number to " + verb + ": ")
	if !ok {
		return "", "", io.EOF
	}
	storeName, ok = c.prompt("Enter Store Name: ")
	if !ok {
		return "", "", io.EOF
	}
	return itemNumber, storeName, nil
}

func (c *Console) addAppliance(ctx context.Context) error {
	storeName, err := c.promptRequired("Store name: ")
	if err != nil {
		return err
	}
	itemNumber, err := c.promptRequired("Store Item Number: ")
	if err != nil {
		return err
	}

	// Reject a taken key before asking for the rest.
	if existing, err := store.GetAppliance(ctx, c.db, storeName, itemNumber); err == nil && existing != nil {
		c.printf("An appliance with this store and item number already exists.\n")
		return nil
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	brand, err := c.promptRequired("Brand: ")
	if err != nil {
		return err
	}
	mdl, err := c.promptRequired("Model: ")
	if err != nil {
		return err
	}
	serial, err := c.promptRequired("Serial: ")
	if err != nil {
		return err
	}
	status, err := c.chooseStatus()
	if err != nil {
		return err
	}
	notes, ok := c.prompt("Notes/Comments (optional): ")
	if !ok {
		return io.EOF
	}

	_, err = store.CreateAppliance(ctx, c.db, store.ApplianceInput{
		StoreName:  storeName,
		ItemNumber: itemNumber,
		Brand:      brand,
		Model:      mdl,
		Serial:     serial,
		Status:     status,
		Notes:      notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.printf("An appliance with this store and item number already exists.\n")
			return nil
		}
		return err
	}

	c.printf("Appliance added!\n")
	return nil
}

func (c *Console) listAppliances(ctx context.Context) error {
	appliances, err := store.ListActive(ctx, c.db)
	if err != nil {
		return err
	}
	if len(appliances) == 0 {
		c.printf("No appliances in inventory.\n")
		return nil
	}
	for i, a := range appliances {
		c.printf("%d. %s | %s | %s | %s | %s | %s\n",
			i+1, a.StoreName, a.ItemNumber, a.Brand, a.Model, a.Serial, a.Status)
	}
	return nil
}

func (c *Console) editAppliance(ctx context.Context) error {
	itemNumber, storeName, err := c.promptKey("edit")
	if err != nil {
		return err
	}

	current, err := store.GetAppliance(ctx, c.db, storeName, itemNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.printf("Appliance not found.\n")
			return nil
		}
		return err
	}

	c.printf("Leave blank to keep current value.\n")

	// Blank answers keep the field, matching the patch semantics.
	field := func(label, current string) (*string, error) {
		value, ok := c.prompt(fmt.Sprintf("%s [%s]: ", label, current))
		if !ok {
			return nil, io.EOF
		}
		if value == "" {
			return nil, nil
		}
		return &value, nil
	}

	patch := store.AppliancePatch{}
	if patch.StoreName, err = field("Store Name", current.StoreName); err != nil {
		return err
	}
	if patch.Brand, err = field("Brand", current.Brand); err != nil {
		return err
	}
	if patch.Model, err = field("Model", current.Model); err != nil {
		return err
	}
	if patch.Serial, err = field("Serial", current.Serial); err != nil {
		return err
	}
	if patch.ItemNumber, err = field("Item number", current.ItemNumber); err != nil {
		return err
	}
	if patch.Notes, err = field("Notes/Comments", current.Notes); err != nil {
		return err
	}

	c.printf("Current Status: %s\n", current.Status)
	answer, ok := c.prompt("Change status? (y/n): ")
	if !ok {
		return io.EOF
	}
	if strings.EqualFold(answer, "y") {
		status, err := c.chooseStatus()
		if err != nil {
			return err
		}
		patch.Status = &status
	}

	_, err = store.UpdateAppliance(ctx, c.db, storeName, itemNumber, patch)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.printf("That item number is already taken at the target store.\n")
			return nil
		}
		return err
	}

	c.printf("Appliance updated!\n")
	return nil
}

func (c *Console) advancedFilter(ctx context.Context) error {
	c.printf("\nAdvanced Filter Options:\n")
	c.printf("1. Filter by Store\n")
	c.printf("2. Filter by Status\n")
	c.printf("3. Filter by Brand\n")
	c.printf("4. Back to Menu\n")

	choice, ok := c.prompt("Select an option: ")
	if !ok {
		return io.EOF
	}

	var (
		results []model.Appliance
		err     error
	)
	switch choice {
	case "1":
		value, ok := c.prompt("Enter the store name: ")
		if !ok {
			return io.EOF
		}
		results, err = store.FilterByStore(ctx, c.db, value)
	case "2":
		status, serr := c.chooseStatus()
		if serr != nil {
			return serr
		}
		results, err = store.FilterByStatus(ctx, c.db, status)
	case "3":
		value, ok := c.prompt("Enter the brand: ")
		if !ok {
			return io.EOF
		}
		results, err = store.FilterByBrand(ctx, c.db, value)
	case "4":
		return nil
	default:
		c.printf("Invalid choice.\n")
		return nil
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		c.printf("No matches found.\n")
		return nil
	}
	for _, a := range results {
		c.printf("%s | %s | %s | %s | %s | %s | %s\n",
			a.StoreName, a.ItemNumber, a.Brand, a.Model, a.Serial, a.Status, a.Notes)
	}
	return nil
}

func (c *Console) summary(ctx context.Context) error {
	counts, err := store.SummaryByStatus(ctx, c.db)
	if err != nil {
		return err
	}
	c.printf("\nInventory Summary:\n")
	if len(counts) == 0 {
		c.printf("No appliances in inventory.\n")
		return nil
	}
	for _, sc := range counts {
		c.printf("%s: %d\n", sc.Status, sc.Count)
	}
	return nil
}

func (c *Console) details(ctx context.Context) error {
	itemNumber, storeName, err := c.promptKey("view")
	if err != nil {
		return err
	}

	a, err := store.GetAppliance(ctx, c.db, storeName, itemNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.printf("Appliance not found.\n")
			return nil
		}
		return err
	}

	c.printf("\nDetailed Appliance Info:\n")
	c.printf("Store: %s\n", a.StoreName)
	c.printf("Item Number: %s\n", a.ItemNumber)
	c.printf("Brand: %s\n", a.Brand)
	c.printf("Model: %s\n", a.Model)
	c.printf("Serial: %s\n", a.Serial)
	c.printf("Status: %s\n", a.Status)
	c.printf("Notes: %s\n", a.Notes)
	if a.InvoiceFile != "" {
		c.printf("Invoice: %s\n", a.InvoiceFile)
	}

	history, err := store.GetHistory(ctx, c.db, a.ID)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		c.printf("Status History:\n")
		for _, entry := range history {
			c.printf("  %s: %s\n", entry.Timestamp.Format(impex.TimestampFormat), entry.Status)
		}
	}
	return nil
}

func (c *Console) storeReport(ctx context.Context) error {
	storeName, ok := c.prompt("Enter store name to report: ")
	if !ok {
		return io.EOF
	}

	groups, err := store.ReportByStore(ctx, c.db, storeName)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		c.printf("No active appliances found for that store.\n")
		return nil
	}

	c.printf("\nInventory for %q:\n", storeName)
	for _, group := range groups {
		c.printf("\nStatus: %s\n", group.Status)
		for _, a := range group.Appliances {
			c.printf("  Item: %s | Notes: %s\n", a.ItemNumber, a.Notes)
		}
	}
	return nil
}

func (c *Console) auditLog(ctx context.Context) error {
	entries, err := store.ListAuditLog(ctx, c.db)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.printf("No actions logged yet.\n")
		return nil
	}

	last := entries[len(entries)-1]
	c.printf("Last log: %s - %s - %s\n\n",
		last.Timestamp.Format(impex.TimestampFormat), last.Action, last.Details)

	c.printf("Full audit log/history:\n")
	for _, entry := range entries {
		c.printf("%s: %s - %s\n",
			entry.Timestamp.Format(impex.TimestampFormat), entry.Action, entry.Details)
	}
	return nil
}
