package api

import (
	"database/sql"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// ReportsHandler handles read-only report and summary endpoints.
type ReportsHandler struct {
	DB *sql.DB
}

// StoreReport handles GET /api/reports/store/{store}: active records grouped
// by status in vocabulary order.
func (h *ReportsHandler) StoreReport(w http.ResponseWriter, r *http.Request) {
	groups, err := store.ReportByStore(r.Context(), h.DB, r.PathValue("store"))
	if err != nil {
		storeError(w, err)
		return
	}
	if groups == nil {
		groups = []store.StatusGroup{}
	}
	jsonResponse(w, http.StatusOK, groups)
}

// Summary handles GET /api/reports/summary: counts per status over the whole
// collection, archived included.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := store.SummaryByStatus(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if counts == nil {
		counts = []store.StatusCount{}
	}
	jsonResponse(w, http.StatusOK, counts)
}

// Dashboard handles GET /api/reports/dashboard: per-store per-status counts
// for active records.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summaries, err := store.DashboardSummary(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []store.StoreSummary{}
	}
	jsonResponse(w, http.StatusOK, summaries)
}

// Stores handles GET /api/stores: distinct store names.
func (h *ReportsHandler) Stores(w http.ResponseWriter, r *http.Request) {
	stores, err := store.ListStores(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if stores == nil {
		stores = []string{}
	}
	jsonResponse(w, http.StatusOK, stores)
}

// Invoices handles GET /api/invoices: records with an attached invoice,
// optionally narrowed by a filename substring in q.
func (h *ReportsHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	appliances, err := store.SearchInvoices(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, err)
		return
	}
	if appliances == nil {
		appliances = []model.Appliance{}
	}
	jsonResponse(w, http.StatusOK, appliances)
}
