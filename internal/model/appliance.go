package model

import (
	"errors"
	"strings"
	"time"
)

// Appliance represents a single tracked appliance. An appliance is identified
// by its (store name, item number) pair: store names compare case-insensitively,
// item numbers compare exactly.
type Appliance struct {
	ID          int64         `json:"id"`
	StoreName   string        `json:"store_name"`
	ItemNumber  string        `json:"item_number"`
	Brand       string        `json:"brand"`
	Model       string        `json:"model"`
	Serial      string        `json:"serial"`
	Status      string        `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	Archived    bool          `json:"archived"`
	InvoiceFile string        `json:"invoice_file,omitempty"`

	// InvoiceData and InvoiceMIME are filled only in whole-collection
	// snapshots. Listings and lookups leave them empty.
	InvoiceData []byte        `json:"invoice_data,omitempty"`
	InvoiceMIME string        `json:"invoice_mime,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	LastUpdated time.Time     `json:"last_updated"`
	History     []StatusEntry `json:"history,omitempty"`
}

// StatusEntry is one entry in an appliance's status history. Entries are
// append-only: one per status change, starting with the initial status.
type StatusEntry struct {
	ID          int64     `json:"-"`
	ApplianceID int64     `json:"-"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// Appliance statuses.
const (
	StatusIn           = "In"
	StatusChecked      = "Checked"
	StatusPartsOrdered = "Parts Ordered"
	StatusRepaired     = "Repaired"
	StatusLoaded       = "Loaded"
	StatusDelivered    = "Delivered"
)

// StatusOptions is the fixed status vocabulary, in menu order.
var StatusOptions = []string{
	StatusIn,
	StatusChecked,
	StatusPartsOrdered,
	StatusRepaired,
	StatusLoaded,
	StatusDelivered,
}

// ErrInvalidStatus is returned when a status is outside the fixed vocabulary.
var ErrInvalidStatus = errors.New("invalid status")

// ValidStatus reports whether status is part of the fixed vocabulary.
func ValidStatus(status string) bool {
	for _, s := range StatusOptions {
		if s == status {
			return true
		}
	}
	return false
}

// InvoiceAllowed reports whether an invoice may be attached for the given
// status. Invoices only exist once an appliance has been loaded or delivered.
func InvoiceAllowed(status string) bool {
	return status == StatusLoaded || status == StatusDelivered
}

// SameKey reports whether the appliance matches the given identity key.
func (a *Appliance) SameKey(storeName, itemNumber string) bool {
	return strings.EqualFold(a.StoreName, storeName) && a.ItemNumber == itemNumber
}

// Key returns a human-readable form of the identity key, used in audit details.
func (a *Appliance) Key() string {
	return a.ItemNumber + " at " + a.StoreName
}
