package web

import (
	"log/slog"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// Dashboard handles GET /. Store-role users land on their portal instead.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if claims.Role != model.RoleAdmin {
		http.Redirect(w, r, "/portal", http.StatusSeeOther)
		return
	}

	summaries, err := store.DashboardSummary(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to build dashboard summary", "error", err)
	}
	counts, err := store.SummaryByStatus(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to summarize by status", "error", err)
	}
	lastAction, err := store.LastAuditEntry(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to read last audit entry", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Stores     []store.StoreSummary
		Counts     []store.StatusCount
		LastAction *model.AuditEntry
	}{
		PageData:   PageData{Title: "Dashboard", User: claims},
		Stores:     summaries,
		Counts:     counts,
		LastAction: lastAction,
	})
}

// Portal handles GET /portal: the active inventory of the store the logged-in
// user is assigned to. Admins without a store assignment see every store.
func (s *Server) Portal(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	var (
		appliances []model.Appliance
		err        error
	)
	if claims.StoreName != "" {
		appliances, err = store.FilterByStore(r.Context(), s.DB, claims.StoreName)
	} else {
		appliances, err = store.ListActive(r.Context(), s.DB)
	}
	if err != nil {
		slog.Error("failed to list appliances for portal", "error", err)
	}

	s.Templates.Render(w, "portal.html", &struct {
		PageData
		StoreName  string
		Appliances []model.Appliance
	}{
		PageData:   PageData{Title: "Store portal", User: claims},
		StoreName:  claims.StoreName,
		Appliances: appliances,
	})
}
