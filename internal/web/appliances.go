package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mjhaler/appliancetrack/internal/invoice"
	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// applianceURL builds the detail page path for an identity key.
func applianceURL(storeName, itemNumber string) string {
	return "/appliances/" + url.PathEscape(storeName) + "/" + url.PathEscape(itemNumber)
}

// AppliancesPage handles GET /appliances. Optional query parameters narrow
// the listing: store, status, brand.
func (s *Server) AppliancesPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	params := r.URL.Query()

	var (
		appliances []model.Appliance
		err        error
	)
	switch {
	case params.Get("store") != "":
		appliances, err = store.FilterByStore(r.Context(), s.DB, params.Get("store"))
	case params.Get("status") != "":
		appliances, err = store.FilterByStatus(r.Context(), s.DB, params.Get("status"))
	case params.Get("brand") != "":
		appliances, err = store.FilterByBrand(r.Context(), s.DB, params.Get("brand"))
	default:
		appliances, err = store.ListActive(r.Context(), s.DB)
	}
	if err != nil {
		slog.Error("failed to list appliances", "error", err)
	}

	stores, err := store.ListStores(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list stores", "error", err)
	}

	s.Templates.Render(w, "appliances.html", &struct {
		PageData
		Appliances  []model.Appliance
		Stores      []string
		FilterStore string
		FilterState string
		FilterBrand string
	}{
		PageData:    PageData{Title: "Appliances", User: claims},
		Appliances:  appliances,
		Stores:      stores,
		FilterStore: params.Get("store"),
		FilterState: params.Get("status"),
		FilterBrand: params.Get("brand"),
	})
}

// ArchivedPage handles GET /archived.
func (s *Server) ArchivedPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	appliances, err := store.ListArchived(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list archived appliances", "error", err)
	}

	s.Templates.Render(w, "archived.html", &struct {
		PageData
		Appliances []model.Appliance
	}{
		PageData:   PageData{Title: "Archived", User: claims},
		Appliances: appliances,
	})
}

// ApplianceAddPage handles GET /appliances/add.
func (s *Server) ApplianceAddPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "appliance_add.html", &PageData{Title: "Add appliance", User: claims})
}

// ApplianceAddSubmit handles POST /appliances/add.
func (s *Server) ApplianceAddSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	in := store.ApplianceInput{
		StoreName:  r.FormValue("store_name"),
		ItemNumber: r.FormValue("item_number"),
		Brand:      r.FormValue("brand"),
		Model:      r.FormValue("model"),
		Serial:     r.FormValue("serial"),
		Status:     r.FormValue("status"),
		Notes:      r.FormValue("notes"),
	}
	if in.Status == "" {
		in.Status = model.StatusIn
	}

	appliance, err := store.CreateAppliance(r.Context(), s.DB, in)
	if err != nil {
		message := "Could not add the appliance."
		switch {
		case errors.Is(err, store.ErrDuplicate):
			message = "An appliance with this item number already exists at that store."
		case errors.Is(err, store.ErrValidation), errors.Is(err, model.ErrInvalidStatus):
			message = "Fill in every required field with a valid status."
		default:
			slog.Error("failed to create appliance", "error", err)
		}
		s.Templates.Render(w, "appliance_add.html", &PageData{
			Title: "Add appliance",
			User:  claims,
			Error: message,
		})
		return
	}

	slog.Info("appliance added", "user", claims.Username, "key", appliance.Key())
	http.Redirect(w, r, applianceURL(appliance.StoreName, appliance.ItemNumber), http.StatusSeeOther)
}

// ApplianceDetailPage handles GET /appliances/{store}/{item}.
func (s *Server) ApplianceDetailPage(w http.ResponseWriter, r *http.Request) {
	s.renderDetail(w, r, "", "")
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	claims := GetWebClaims(r.Context())

	appliance, err := store.GetAppliance(r.Context(), s.DB, r.PathValue("store"), r.PathValue("item"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to get appliance", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	history, err := store.GetHistory(r.Context(), s.DB, appliance.ID)
	if err != nil {
		slog.Error("failed to get status history", "error", err)
	}

	s.Templates.Render(w, "appliance_detail.html", &struct {
		PageData
		Appliance *model.Appliance
		History   []model.StatusEntry
	}{
		PageData:  PageData{Title: appliance.Key(), User: claims, Error: errMsg, Success: successMsg},
		Appliance: appliance,
		History:   history,
	})
}

// ApplianceUpdateSubmit handles POST /appliances/{store}/{item}. Blank form
// fields keep the current value, except notes which may be cleared.
func (s *Server) ApplianceUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	keepBlank := func(name string) *string {
		v := r.FormValue(name)
		if v == "" {
			return nil
		}
		return &v
	}
	notes := r.FormValue("notes")

	appliance, err := store.UpdateAppliance(r.Context(), s.DB,
		r.PathValue("store"), r.PathValue("item"),
		store.AppliancePatch{
			StoreName:  keepBlank("store_name"),
			ItemNumber: keepBlank("item_number"),
			Brand:      keepBlank("brand"),
			Model:      keepBlank("model"),
			Serial:     keepBlank("serial"),
			Status:     keepBlank("status"),
			Notes:      &notes,
		})
	if err != nil {
		message := "Could not save the changes."
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, store.ErrDuplicate):
			message = "That item number is already taken at the target store."
		case errors.Is(err, store.ErrValidation), errors.Is(err, model.ErrInvalidStatus):
			message = "Required fields cannot be cleared and the status must be valid."
		default:
			slog.Error("failed to update appliance", "error", err)
		}
		s.renderDetail(w, r, message, "")
		return
	}

	slog.Info("appliance updated", "user", claims.Username, "key", appliance.Key())
	http.Redirect(w, r, applianceURL(appliance.StoreName, appliance.ItemNumber), http.StatusSeeOther)
}

// ApplianceArchiveSubmit handles POST /appliances/{store}/{item}/archive.
func (s *Server) ApplianceArchiveSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	storeName, itemNumber := r.PathValue("store"), r.PathValue("item")

	if err := store.ArchiveAppliance(r.Context(), s.DB, storeName, itemNumber); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.renderDetail(w, r, "The appliance is already archived.", "")
		return
	}

	slog.Info("appliance archived", "user", claims.Username, "key", itemNumber+" at "+storeName)
	http.Redirect(w, r, "/archived", http.StatusSeeOther)
}

// ApplianceUnarchiveSubmit handles POST /appliances/{store}/{item}/unarchive.
func (s *Server) ApplianceUnarchiveSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	storeName, itemNumber := r.PathValue("store"), r.PathValue("item")

	if err := store.UnarchiveAppliance(r.Context(), s.DB, storeName, itemNumber); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.renderDetail(w, r, "The appliance is not archived.", "")
		return
	}

	slog.Info("appliance unarchived", "user", claims.Username, "key", itemNumber+" at "+storeName)
	http.Redirect(w, r, applianceURL(storeName, itemNumber), http.StatusSeeOther)
}

// InvoiceSubmit handles POST /appliances/{store}/{item}/invoice.
func (s *Server) InvoiceSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.renderDetail(w, r, "The file is too large.", "")
		return
	}

	file, header, err := r.FormFile("invoice")
	if err != nil {
		s.renderDetail(w, r, "Choose an invoice file to upload.", "")
		return
	}
	defer file.Close()

	result, err := invoice.Process(file)
	if err != nil {
		s.renderDetail(w, r, "Invoices must be a PDF, JPEG, or PNG.", "")
		return
	}

	err = store.SetInvoice(r.Context(), s.DB,
		r.PathValue("store"), r.PathValue("item"),
		header.Filename, result.Data, result.MIME)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			s.renderDetail(w, r, "Invoices can only be attached once the appliance is Loaded or Delivered.", "")
			return
		}
		slog.Error("failed to save invoice", "error", err)
		s.renderDetail(w, r, "Could not save the invoice.", "")
		return
	}

	slog.Info("invoice uploaded", "user", claims.Username,
		"key", r.PathValue("item")+" at "+r.PathValue("store"), "file", header.Filename)
	s.renderDetail(w, r, "", "Invoice uploaded.")
}

// InvoiceGet handles GET /appliances/{store}/{item}/invoice.
func (s *Server) InvoiceGet(w http.ResponseWriter, r *http.Request) {
	data, mime, filename, err := store.GetInvoice(r.Context(), s.DB, r.PathValue("store"), r.PathValue("item"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to get invoice", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write invoice response", "error", err)
	}
}

// SearchPage handles GET /search.
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	query := r.URL.Query().Get("q")

	var appliances []model.Appliance
	if query != "" {
		var err error
		appliances, err = store.Search(r.Context(), s.DB, query)
		if err != nil {
			slog.Error("search failed", "error", err)
		}
	}

	s.Templates.Render(w, "search.html", &struct {
		PageData
		Query      string
		Appliances []model.Appliance
	}{
		PageData:   PageData{Title: "Search", User: claims},
		Query:      query,
		Appliances: appliances,
	})
}

// InvoicesPage handles GET /invoices: appliances with an attached invoice,
// optionally narrowed by a filename substring.
func (s *Server) InvoicesPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	query := r.URL.Query().Get("q")

	appliances, err := store.SearchInvoices(r.Context(), s.DB, query)
	if err != nil {
		slog.Error("invoice search failed", "error", err)
	}

	s.Templates.Render(w, "invoices.html", &struct {
		PageData
		Query      string
		Appliances []model.Appliance
	}{
		PageData:   PageData{Title: "Invoices", User: claims},
		Query:      query,
		Appliances: appliances,
	})
}

// BulkPage handles GET /bulk.
func (s *Server) BulkPage(w http.ResponseWriter, r *http.Request) {
	s.renderBulk(w, r, "", "")
}

func (s *Server) renderBulk(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	claims := GetWebClaims(r.Context())
	stores, err := store.ListStores(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list stores", "error", err)
	}

	s.Templates.Render(w, "bulk.html", &struct {
		PageData
		Stores []string
	}{
		PageData: PageData{Title: "Bulk actions", User: claims, Error: errMsg, Success: successMsg},
		Stores:   stores,
	})
}

// BulkSubmit handles POST /bulk. The action form value picks archive or
// unarchive; every active (or archived) record matching the store and status
// transitions.
func (s *Server) BulkSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	storeName := r.FormValue("store_name")
	status := r.FormValue("status")
	action := r.FormValue("action")

	if storeName == "" || !model.ValidStatus(status) {
		s.renderBulk(w, r, "Pick a store and a valid status.", "")
		return
	}

	op := store.BulkArchive
	if action == "unarchive" {
		op = store.BulkUnarchive
	}

	count, err := op(r.Context(), s.DB, storeName, status)
	if err != nil {
		slog.Error("bulk action failed", "error", err, "action", action)
		s.renderBulk(w, r, "The bulk action failed.", "")
		return
	}

	slog.Info("bulk action", "user", claims.Username, "action", action,
		"store", storeName, "status", status, "count", count)
	s.renderBulk(w, r, "", plural(count, "appliance")+" "+action+"d.")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
