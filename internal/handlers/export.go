package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/it-inventory/internal/export"
	"github.com/crucial707/it-inventory/internal/inventory"
	"github.com/crucial707/it-inventory/internal/models"
)

// ==========================
// ExportHandler
// ==========================
type ExportHandler struct {
	Service  *inventory.Service
	LogoPath string
	Now      func() time.Time
}

func (h *ExportHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// ExportRows turns the rows a client selected ({"data": [...]}) into a spreadsheet.
func (h *ExportHandler) ExportRows(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Data []models.Row `json:"data"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if len(input.Data) == 0 {
		JSONError(w, "invalid or empty data for export", http.StatusBadRequest)
		return
	}
	h.send(w, r, input.Data, nil)
}

// ExportTable exports a whole table, filtered like FetchData.
func (h *ExportHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseTableType(chi.URLParam(r, "tableType"))
	if err != nil {
		writeInventoryError(w, r, "export table", err)
		return
	}
	rows, err := h.Service.ListAssets(r.Context(), t, queryFilters(r), 0, 0)
	if err != nil {
		writeInventoryError(w, r, "export table", err)
		return
	}
	if len(rows) == 0 {
		JSONError(w, "no assets to export", http.StatusNotFound)
		return
	}
	cols, err := h.Service.Columns(r.Context(), t)
	if err != nil {
		writeInventoryError(w, r, "export table", err)
		return
	}
	h.send(w, r, rows, cols)
}

func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, rows []models.Row, cols []string) {
	var buf bytes.Buffer
	if err := export.Write(&buf, rows, export.Options{Columns: cols, LogoPath: h.LogoPath}); err != nil {
		writeInventoryError(w, r, "export", err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(h.now()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
