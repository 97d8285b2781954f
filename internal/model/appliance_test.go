package model

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range StatusOptions {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be a valid status", s)
		}
	}
	if ValidStatus("Broken") {
		t.Error("expected 'Broken' to be invalid")
	}
	if ValidStatus("in") {
		t.Error("status vocabulary is case-sensitive, 'in' should be invalid")
	}
}

func TestInvoiceAllowed(t *testing.T) {
	if !InvoiceAllowed(StatusLoaded) || !InvoiceAllowed(StatusDelivered) {
		t.Error("expected invoices to be allowed for Loaded and Delivered")
	}
	if InvoiceAllowed(StatusIn) || InvoiceAllowed(StatusRepaired) {
		t.Error("expected invoices to be rejected outside Loaded/Delivered")
	}
}

func TestSameKey(t *testing.T) {
	a := &Appliance{StoreName: "Acme", ItemNumber: "A1"}
	if !a.SameKey("ACME", "A1") {
		t.Error("store name comparison should be case-insensitive")
	}
	if a.SameKey("Acme", "a1") {
		t.Error("item number comparison should be exact")
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleStore) {
		t.Error("admin should satisfy store minimum")
	}
	if RoleAtLeast(RoleStore, RoleAdmin) {
		t.Error("store should not satisfy admin minimum")
	}
	if RoleAtLeast("unknown", RoleStore) {
		t.Error("unknown role should not satisfy any minimum")
	}
}
