package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/mjhaler/appliancetrack/web"
)

// NewRouter creates the web page router with all page routes registered.
// Store-role users only reach the portal and shared record pages, the rest
// is admin-only.
func NewRouter(db *sql.DB, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	admin := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(RequireAdmin(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(h)
	}

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", authed(s.Dashboard))
	mux.Handle("GET /portal", authed(s.Portal))
	mux.Handle("GET /search", authed(s.SearchPage))

	mux.Handle("GET /appliances", admin(s.AppliancesPage))
	mux.Handle("GET /appliances/add", admin(s.ApplianceAddPage))
	mux.Handle("POST /appliances/add", admin(s.ApplianceAddSubmit))
	mux.Handle("GET /appliances/{store}/{item}", authed(s.ApplianceDetailPage))
	mux.Handle("POST /appliances/{store}/{item}", admin(s.ApplianceUpdateSubmit))
	mux.Handle("POST /appliances/{store}/{item}/archive", admin(s.ApplianceArchiveSubmit))
	mux.Handle("POST /appliances/{store}/{item}/unarchive", admin(s.ApplianceUnarchiveSubmit))
	mux.Handle("POST /appliances/{store}/{item}/invoice", admin(s.InvoiceSubmit))
	mux.Handle("GET /appliances/{store}/{item}/invoice", authed(s.InvoiceGet))

	mux.Handle("GET /archived", admin(s.ArchivedPage))
	mux.Handle("GET /invoices", admin(s.InvoicesPage))

	mux.Handle("GET /bulk", admin(s.BulkPage))
	mux.Handle("POST /bulk", admin(s.BulkSubmit))

	mux.Handle("GET /files", admin(s.FilesPage))
	mux.Handle("GET /files/export.csv", admin(s.ExportCSV))
	mux.Handle("GET /files/export.json", admin(s.ExportJSON))
	mux.Handle("GET /files/export.xlsx", admin(s.ExportXLSX))
	mux.Handle("GET /files/audit.csv", admin(s.ExportAuditCSV))
	mux.Handle("POST /files/import", admin(s.ImportCSVSubmit))
	mux.Handle("POST /files/restore", admin(s.RestoreSubmit))

	mux.Handle("GET /audit", admin(s.AuditPage))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users", admin(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}/password", admin(s.UserResetPasswordSubmit))
	mux.Handle("POST /users/{id}/active", admin(s.UserToggleActiveSubmit))

	mux.Handle("GET /settings", authed(s.SettingsPage))
	mux.Handle("POST /settings", authed(s.SettingsSubmit))

	return mux, nil
}
