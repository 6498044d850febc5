package handlers

import (
	"net/http"

	"github.com/crucial707/it-inventory/internal/inventory"
	"github.com/crucial707/it-inventory/internal/models"
)

// ==========================
// HistoryHandler
// ==========================
type HistoryHandler struct {
	Service *inventory.Service
}

// History answers POST /assetHistory with the field-level change log of one asset.
// Body: {"tableType", "sr_no", "machine_asset_tag"?, "monitor_asset_tag"?, "asset_tag"?}.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TableType string `json:"tableType" validate:"required"`
		models.AssetKey
	}
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input) {
		return
	}
	t, err := models.ParseTableType(input.TableType)
	if err != nil {
		writeInventoryError(w, r, "asset history", err)
		return
	}

	entries, err := h.Service.GetHistory(r.Context(), t, input.AssetKey)
	if err != nil {
		writeInventoryError(w, r, "asset history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}
