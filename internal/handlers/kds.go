package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/it-inventory/internal/repo"
)

type KDSHandler struct {
	Repo *repo.KDSRepo
}

// Fetch returns the dropdown values of a code, e.g. GET /kdsFetch/COMPANY.
func (h *KDSHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	values, err := h.Repo.Values(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeInventoryError(w, r, "kds fetch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"values": values})
}
