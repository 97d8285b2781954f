package api

import (
	"database/sql"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Reads are
// open to every authenticated user, mutations require the admin role.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	appliancesHandler := &AppliancesHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}
	auditHandler := &AuditHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}
	impexHandler := &ImpexHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(requireAdmin(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authMW(h)
	}

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Appliances: read (all roles), write (admin).
	mux.Handle("GET /api/appliances", authed(appliancesHandler.List))
	mux.Handle("POST /api/appliances", admin(appliancesHandler.Create))
	mux.Handle("GET /api/appliances/archived", authed(appliancesHandler.ListArchived))
	mux.Handle("POST /api/appliances/bulk/archive", admin(appliancesHandler.BulkArchive))
	mux.Handle("POST /api/appliances/bulk/unarchive", admin(appliancesHandler.BulkUnarchive))
	mux.Handle("GET /api/appliances/{store}/{item}", authed(appliancesHandler.Get))
	mux.Handle("PUT /api/appliances/{store}/{item}", admin(appliancesHandler.Update))
	mux.Handle("POST /api/appliances/{store}/{item}/archive", admin(appliancesHandler.Archive))
	mux.Handle("POST /api/appliances/{store}/{item}/unarchive", admin(appliancesHandler.Unarchive))
	mux.Handle("GET /api/appliances/{store}/{item}/history", authed(appliancesHandler.GetHistory))
	mux.Handle("PUT /api/appliances/{store}/{item}/invoice", admin(appliancesHandler.UploadInvoice))
	mux.Handle("GET /api/appliances/{store}/{item}/invoice", authed(appliancesHandler.GetInvoice))

	// Reports and lookups.
	mux.Handle("GET /api/reports/store/{store}", authed(reportsHandler.StoreReport))
	mux.Handle("GET /api/reports/summary", authed(reportsHandler.Summary))
	mux.Handle("GET /api/reports/dashboard", authed(reportsHandler.Dashboard))
	mux.Handle("GET /api/stores", authed(reportsHandler.Stores))
	mux.Handle("GET /api/invoices", authed(reportsHandler.Invoices))

	// Audit log (admin only).
	mux.Handle("GET /api/audit", admin(auditHandler.List))
	mux.Handle("GET /api/audit/latest", admin(auditHandler.Latest))
	mux.Handle("GET /api/audit/export", admin(auditHandler.ExportCSV))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}/active", admin(usersHandler.SetActive))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))

	// Export and import (admin only).
	mux.Handle("GET /api/export/csv", admin(impexHandler.ExportCSV))
	mux.Handle("GET /api/export/json", admin(impexHandler.ExportJSON))
	mux.Handle("GET /api/export/xlsx", admin(impexHandler.ExportXLSX))
	mux.Handle("POST /api/import/csv", admin(impexHandler.ImportCSV))
	mux.Handle("POST /api/import/json", admin(impexHandler.Restore))

	return mux
}
