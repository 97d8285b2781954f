package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// UsersPage handles GET /users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	s.renderUsers(w, r, "", "")
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	claims := GetWebClaims(r.Context())
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
	}{
		PageData: PageData{Title: "Users", User: claims, Error: errMsg, Success: successMsg},
		Users:    users,
	})
}

// UserCreateSubmit handles POST /users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")
	storeName := r.FormValue("store_name")

	if username == "" || password == "" || (role != model.RoleAdmin && role != model.RoleStore) {
		s.renderUsers(w, r, "Fill in a username, a password, and a role.", "")
		return
	}
	if role == model.RoleStore && storeName == "" {
		s.renderUsers(w, r, "Store accounts need a store name.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, username, string(hash), role, storeName); err != nil {
		s.renderUsers(w, r, "That username is already taken.", "")
		return
	}

	slog.Info("user created", "user", claims.Username, "new_user", username, "role", role)
	s.renderUsers(w, r, "", "User "+username+" created.")
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if newPassword == "" {
		s.renderUsers(w, r, "Enter a new password.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, id, string(hash)); err != nil {
		slog.Error("failed to reset password", "error", err)
		s.renderUsers(w, r, "Could not reset the password.", "")
		return
	}

	slog.Info("user password reset", "user", claims.Username, "target_id", id)
	s.renderUsers(w, r, "", "Password reset.")
}

// UserToggleActiveSubmit handles POST /users/{id}/active (admin only).
func (s *Server) UserToggleActiveSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	if claims.UserID == id {
		s.renderUsers(w, r, "You cannot deactivate your own account.", "")
		return
	}

	target, err := store.GetUser(r.Context(), s.DB, id)
	if err != nil || target == nil {
		s.renderUsers(w, r, "No such user.", "")
		return
	}

	if err := store.SetUserActive(r.Context(), s.DB, id, !target.Active); err != nil {
		slog.Error("failed to toggle user", "error", err)
		s.renderUsers(w, r, "Could not update the user.", "")
		return
	}

	slog.Info("user active state changed", "user", claims.Username,
		"target_user", target.Username, "active", !target.Active)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "settings.html", &PageData{
		Title: "Settings",
		User:  claims,
	})
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	render := func(errMsg, successMsg string) {
		s.Templates.Render(w, "settings.html", &PageData{
			Title:   "Settings",
			User:    claims,
			Error:   errMsg,
			Success: successMsg,
		})
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		render("Enter your current and new password.", "")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		render("Could not look up your account.", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		render("Your current password is not correct.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		render("Could not save the new password.", "")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		render("Could not save the new password.", "")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	render("", "Password changed.")
}
