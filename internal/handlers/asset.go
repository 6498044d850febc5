package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/it-inventory/internal/inventory"
	"github.com/crucial707/it-inventory/internal/middleware"
	"github.com/crucial707/it-inventory/internal/models"
)

type AssetHandler struct {
	Service *inventory.Service
	// UploadDir receives invoice files sent with a multipart create.
	UploadDir string
	// MaxUploadBytes bounds the in-memory part of a multipart form.
	MaxUploadBytes int64
	Now            func() time.Time
}

func (h *AssetHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

//
// ==========================
// Columns
// ==========================
//

func (h *AssetHandler) FetchColumns(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseTableType(chi.URLParam(r, "tableType"))
	if err != nil {
		writeInventoryError(w, r, "fetch columns", err)
		return
	}
	cols, err := h.Service.Columns(r.Context(), t)
	if err != nil {
		writeInventoryError(w, r, "fetch columns", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols})
}

//
// ==========================
// List Assets
// ==========================
//

// FetchData lists a table. Query parameters other than limit and offset filter by column.
func (h *AssetHandler) FetchData(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseTableType(chi.URLParam(r, "tableType"))
	if err != nil {
		writeInventoryError(w, r, "fetch data", err)
		return
	}
	limit, offset := pagination(r)
	rows, err := h.Service.ListAssets(r.Context(), t, queryFilters(r), limit, offset)
	if err != nil {
		writeInventoryError(w, r, "fetch data", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

//
// ==========================
// Get Asset By Key
// ==========================
//

type keyRequest struct {
	TableType string          `json:"tableType" validate:"required"`
	Key       models.AssetKey `json:"key"`
}

func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	var input keyRequest
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input) {
		return
	}
	t, err := models.ParseTableType(input.TableType)
	if err != nil {
		writeInventoryError(w, r, "get asset", err)
		return
	}
	row, err := h.Service.GetAsset(r.Context(), t, input.Key)
	if err != nil {
		writeInventoryError(w, r, "get asset", err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

//
// ==========================
// Update Asset By Key
// ==========================
//

func (h *AssetHandler) UpdateByKey(w http.ResponseWriter, r *http.Request) {
	var input struct {
		keyRequest
		Updates map[string]any `json:"updates"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input.keyRequest) {
		return
	}
	t, err := models.ParseTableType(input.TableType)
	if err != nil {
		writeInventoryError(w, r, "update asset", err)
		return
	}

	actor := middleware.Actor(r.Context(), h.Service.SystemActor)
	res, err := h.Service.ApplyUpdateWithAudit(r.Context(), t, input.Key, input.Updates, actor)
	if err != nil {
		writeInventoryError(w, r, "update asset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Asset updated successfully",
		"row":     res.Row,
		"changes": res.Changes,
	})
}

//
// ==========================
// Create Asset
// ==========================
//

// CreateAsset accepts a flat JSON object ({"tableType": ..., column: value, ...}) or the
// same fields as a multipart form with an optional invoice_file part.
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var (
		data models.Row
		err  error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		data, err = h.readMultipart(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else if err := decodeJSON(r, &data); err != nil {
		writeDecodeError(w, err)
		return
	}

	rawType, _ := data["tableType"].(string)
	delete(data, "tableType")
	t, err := models.ParseTableType(rawType)
	if err != nil {
		writeInventoryError(w, r, "create asset", err)
		return
	}

	row, err := h.Service.CreateAsset(r.Context(), t, data)
	if err != nil {
		writeInventoryError(w, r, "create asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Asset added successfully", "row": row})
}

func (h *AssetHandler) readMultipart(r *http.Request) (models.Row, error) {
	maxMemory := h.MaxUploadBytes
	if maxMemory <= 0 {
		maxMemory = 10 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}
	data := make(models.Row, len(r.MultipartForm.Value))
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			data[k] = strings.TrimSpace(v[0])
		}
	}

	file, header, err := r.FormFile("invoice_file")
	if errors.Is(err, http.ErrMissingFile) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stored, err := inventory.SaveUpload(h.UploadDir, header.Filename, file, h.now())
	if err != nil {
		return nil, err
	}
	data["invoice_file"] = stored
	return data, nil
}
