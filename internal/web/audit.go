package web

import (
	"log/slog"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// AuditPage handles GET /audit: the full ordered audit trail, newest entry
// highlighted.
func (s *Server) AuditPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	entries, err := store.ListAuditLog(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list audit log", "error", err)
	}
	last, err := store.LastAuditEntry(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to read last audit entry", "error", err)
	}

	s.Templates.Render(w, "audit.html", &struct {
		PageData
		Entries []model.AuditEntry
		Last    *model.AuditEntry
	}{
		PageData: PageData{Title: "Audit log", User: claims},
		Entries:  entries,
		Last:     last,
	})
}
