package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mjhaler/appliancetrack/internal/impex"
)

// FilesPage handles GET /files: export, import, and backup options.
func (s *Server) FilesPage(w http.ResponseWriter, r *http.Request) {
	s.renderFiles(w, r, "", "")
}

func (s *Server) renderFiles(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "files.html", &PageData{
		Title:   "File options",
		User:    claims,
		Error:   errMsg,
		Success: successMsg,
	})
}

// ExportCSV handles GET /files/export.csv.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="appliances.csv"`)
	if err := impex.ExportCSV(r.Context(), s.DB, w); err != nil {
		slog.Error("csv export failed", "error", err)
	}
}

// ExportJSON handles GET /files/export.json: a full snapshot including
// status history and archived records.
func (s *Server) ExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="appliances.json"`)
	if err := impex.ExportJSON(r.Context(), s.DB, w); err != nil {
		slog.Error("json export failed", "error", err)
	}
}

// ExportXLSX handles GET /files/export.xlsx.
func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="appliances.xlsx"`)
	if err := impex.ExportXLSX(r.Context(), s.DB, w); err != nil {
		slog.Error("xlsx export failed", "error", err)
	}
}

// ExportAuditCSV handles GET /files/audit.csv.
func (s *Server) ExportAuditCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit_log.csv"`)
	if err := impex.ExportAuditCSV(r.Context(), s.DB, w); err != nil {
		slog.Error("audit csv export failed", "error", err)
	}
}

// ImportCSVSubmit handles POST /files/import. Rows whose identity key is
// already taken are skipped.
func (s *Server) ImportCSVSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.renderFiles(w, r, "The file is too large.", "")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.renderFiles(w, r, "Choose a CSV file to import.", "")
		return
	}
	defer file.Close()

	count, err := impex.ImportCSV(r.Context(), s.DB, file)
	if err != nil {
		s.renderFiles(w, r, "The file could not be read as CSV.", "")
		return
	}

	slog.Info("csv import", "user", claims.Username, "imported", count)
	s.renderFiles(w, r, "", "Imported "+strconv.Itoa(count)+" appliances.")
}

// RestoreSubmit handles POST /files/restore. The uploaded snapshot replaces
// the whole collection.
func (s *Server) RestoreSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		s.renderFiles(w, r, "The file is too large.", "")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.renderFiles(w, r, "Choose a snapshot file to restore.", "")
		return
	}
	defer file.Close()

	if err := impex.ImportJSON(r.Context(), s.DB, file); err != nil {
		s.renderFiles(w, r, "The file is not a valid snapshot.", "")
		return
	}

	slog.Info("snapshot restored", "user", claims.Username)
	s.renderFiles(w, r, "", "Snapshot restored.")
}
