package api

import (
	"database/sql"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/impex"
	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	DB *sql.DB
}

// List handles GET /api/audit: the full ordered audit trail.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListAuditLog(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Latest handles GET /api/audit/latest: the most recent entry, 404 when the
// log is empty.
func (h *AuditHandler) Latest(w http.ResponseWriter, r *http.Request) {
	entry, err := store.LastAuditEntry(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if entry == nil {
		jsonError(w, http.StatusNotFound, "audit log is empty")
		return
	}
	jsonResponse(w, http.StatusOK, entry)
}

// ExportCSV handles GET /api/audit/export.
func (h *AuditHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit_log.csv"`)
	if err := impex.ExportAuditCSV(r.Context(), h.DB, w); err != nil {
		storeError(w, err)
	}
}
