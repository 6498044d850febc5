package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/it-inventory/internal/assettag"
	"github.com/crucial707/it-inventory/internal/repo"
)

// ==========================
// AssetTagHandler
// ==========================
type AssetTagHandler struct {
	Counters *repo.CounterRepo
}

func (h *AssetTagHandler) generator() *assettag.Generator {
	return &assettag.Generator{Counters: h.Counters}
}

// FetchLastCounter returns the last counter issued for a company and device type.
func (h *AssetTagHandler) FetchLastCounter(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Company    string `json:"company" validate:"required"`
		DeviceType string `json:"deviceType" validate:"required"`
		IsMachine  *bool  `json:"isMachine"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input) {
		return
	}
	isMachine := input.IsMachine == nil || *input.IsMachine

	company := strings.ToUpper(strings.TrimSpace(input.Company))
	n, err := h.Counters.Last(r.Context(), company, assettag.CounterDeviceType(input.DeviceType, isMachine))
	if err != nil {
		writeInventoryError(w, r, "fetch last counter", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"lastCounter": n})
}

// NextTag reserves the next counter and returns the generated asset number and tag.
func (h *AssetTagHandler) NextTag(w http.ResponseWriter, r *http.Request) {
	var input assettag.Request
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input) {
		return
	}

	tag, err := h.generator().Next(r.Context(), input)
	if errors.Is(err, assettag.ErrInvalidPurchaseDate) {
		JSONValidationError(w, err.Error(), map[string]string{"purchaseDate": "expected YYYY-MM-DD"}, http.StatusBadRequest)
		return
	}
	if err != nil {
		writeInventoryError(w, r, "next asset tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}
