package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/mjhaler/appliancetrack/internal/invoice"
	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

// AppliancesHandler handles appliance CRUD and archive endpoints. Records are
// addressed by identity key in the path: /api/appliances/{store}/{item}.
type AppliancesHandler struct {
	DB *sql.DB
}

type createApplianceRequest struct {
	StoreName  string `json:"store_name"`
	ItemNumber string `json:"item_number"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Serial     string `json:"serial"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

// updateApplianceRequest mirrors store.AppliancePatch: absent fields keep the
// current value, present-but-empty fields clear it.
type updateApplianceRequest struct {
	StoreName  *string `json:"store_name"`
	ItemNumber *string `json:"item_number"`
	Brand      *string `json:"brand"`
	Model      *string `json:"model"`
	Serial     *string `json:"serial"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

type bulkRequest struct {
	StoreName string `json:"store_name"`
	Status    string `json:"status"`
}

// List handles GET /api/appliances. Optional query parameters narrow the
// result: q (substring search), store, status, brand (exact filters).
func (h *AppliancesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	var (
		appliances []model.Appliance
		err        error
	)
	switch {
	case params.Get("q") != "":
		appliances, err = store.Search(ctx, h.DB, params.Get("q"))
	case params.Get("store") != "":
		appliances, err = store.FilterByStore(ctx, h.DB, params.Get("store"))
	case params.Get("status") != "":
		appliances, err = store.FilterByStatus(ctx, h.DB, params.Get("status"))
	case params.Get("brand") != "":
		appliances, err = store.FilterByBrand(ctx, h.DB, params.Get("brand"))
	default:
		appliances, err = store.ListActive(ctx, h.DB)
	}
	if err != nil {
		storeError(w, err)
		return
	}
	if appliances == nil {
		appliances = []model.Appliance{}
	}
	jsonResponse(w, http.StatusOK, appliances)
}

// ListArchived handles GET /api/appliances/archived.
func (h *AppliancesHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	appliances, err := store.ListArchived(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if appliances == nil {
		appliances = []model.Appliance{}
	}
	jsonResponse(w, http.StatusOK, appliances)
}

// Create handles POST /api/appliances.
func (h *AppliancesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createApplianceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Status == "" {
		req.Status = model.StatusIn
	}

	appliance, err := store.CreateAppliance(r.Context(), h.DB, store.ApplianceInput{
		StoreName:  req.StoreName,
		ItemNumber: req.ItemNumber,
		Brand:      req.Brand,
		Model:      req.Model,
		Serial:     req.Serial,
		Status:     req.Status,
		Notes:      req.Notes,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, appliance)
}

// Get handles GET /api/appliances/{store}/{item}.
func (h *AppliancesHandler) Get(w http.ResponseWriter, r *http.Request) {
	appliance, err := store.GetAppliance(r.Context(), h.DB, r.PathValue("store"), r.PathValue("item"))
	if err != nil {
		storeError(w, err)
		return
	}

	history, err := store.GetHistory(r.Context(), h.DB, appliance.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	appliance.History = history

	jsonResponse(w, http.StatusOK, appliance)
}

// Update handles PUT /api/appliances/{store}/{item}.
func (h *AppliancesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateApplianceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appliance, err := store.UpdateAppliance(r.Context(), h.DB,
		r.PathValue("store"), r.PathValue("item"),
		store.AppliancePatch{
			StoreName:  req.StoreName,
			ItemNumber: req.ItemNumber,
			Brand:      req.Brand,
			Model:      req.Model,
			Serial:     req.Serial,
			Status:     req.Status,
			Notes:      req.Notes,
		})
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, appliance)
}

// Archive handles POST /api/appliances/{store}/{item}/archive.
func (h *AppliancesHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if err := store.ArchiveAppliance(r.Context(), h.DB, r.PathValue("store"), r.PathValue("item")); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "appliance archived"})
}

// Unarchive handles POST /api/appliances/{store}/{item}/unarchive.
func (h *AppliancesHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	if err := store.UnarchiveAppliance(r.Context(), h.DB, r.PathValue("store"), r.PathValue("item")); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "appliance unarchived"})
}

// BulkArchive handles POST /api/appliances/bulk/archive.
func (h *AppliancesHandler) BulkArchive(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, store.BulkArchive)
}

// BulkUnarchive handles POST /api/appliances/bulk/unarchive.
func (h *AppliancesHandler) BulkUnarchive(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, store.BulkUnarchive)
}

func (h *AppliancesHandler) bulk(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, db *sql.DB, storeName, status string) (int, error)) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StoreName == "" || req.Status == "" {
		jsonError(w, http.StatusBadRequest, "store_name and status required")
		return
	}
	if !model.ValidStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	count, err := op(r.Context(), h.DB, req.StoreName, req.Status)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"count": count})
}

// GetHistory handles GET /api/appliances/{store}/{item}/history.
func (h *AppliancesHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	appliance, err := store.GetAppliance(r.Context(), h.DB, r.PathValue("store"), r.PathValue("item"))
	if err != nil {
		storeError(w, err)
		return
	}

	history, err := store.GetHistory(r.Context(), h.DB, appliance.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	if history == nil {
		history = []model.StatusEntry{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// UploadInvoice handles PUT /api/appliances/{store}/{item}/invoice. Image
// uploads are downscaled and re-encoded, PDFs are stored as-is. Attaching is
// only allowed while the appliance is Loaded or Delivered.
func (h *AppliancesHandler) UploadInvoice(w http.ResponseWriter, r *http.Request) {
	// Limit to 10 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("invoice")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invoice file required")
		return
	}
	defer file.Close()

	result, err := invoice.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invoice must be a PDF, JPEG, or PNG")
		return
	}

	err = store.SetInvoice(r.Context(), h.DB,
		r.PathValue("store"), r.PathValue("item"),
		header.Filename, result.Data, result.MIME)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "invoice uploaded"})
}

// GetInvoice handles GET /api/appliances/{store}/{item}/invoice.
func (h *AppliancesHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	data, mime, filename, err := store.GetInvoice(r.Context(), h.DB, r.PathValue("store"), r.PathValue("item"))
	if err != nil {
		storeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no invoice")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	w.Write(data)
}
