package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/impex"
)

// ImpexHandler handles inventory export, import, and restore endpoints.
type ImpexHandler struct {
	DB *sql.DB
}

// ExportCSV handles GET /api/export/csv: active inventory as CSV.
func (h *ImpexHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="appliances.csv"`)
	if err := impex.ExportCSV(r.Context(), h.DB, w); err != nil {
		storeError(w, err)
	}
}

// ExportJSON handles GET /api/export/json: a full snapshot of the collection
// including status history and archived records.
func (h *ImpexHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="appliances.json"`)
	if err := impex.ExportJSON(r.Context(), h.DB, w); err != nil {
		storeError(w, err)
	}
}

// ExportXLSX handles GET /api/export/xlsx: active inventory as a spreadsheet.
func (h *ImpexHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="appliances.xlsx"`)
	if err := impex.ExportXLSX(r.Context(), h.DB, w); err != nil {
		storeError(w, err)
	}
}

// ImportCSV handles POST /api/import/csv. Rows with a taken identity key are
// skipped; the response carries the number of records actually created.
func (h *ImpexHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "csv file required")
		return
	}
	defer file.Close()

	count, err := impex.ImportCSV(r.Context(), h.DB, file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid CSV file")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("csv import", "user", claims.Username, "imported", count)
	jsonResponse(w, http.StatusOK, map[string]int{"imported": count})
}

// Restore handles POST /api/import/json. The uploaded snapshot replaces the
// whole collection, it is not merged.
func (h *ImpexHandler) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "json file required")
		return
	}
	defer file.Close()

	if err := impex.ImportJSON(r.Context(), h.DB, file); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid snapshot file")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("snapshot restored", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "snapshot restored"})
}
