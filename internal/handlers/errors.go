package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/it-inventory/internal/models"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// ==========================
// Inventory error mapping
// ==========================

var badRequestErrors = []error{
	models.ErrUnknownTableType,
	models.ErrMissingRequiredKeyField,
	models.ErrNoFieldsToUpdate,
	models.ErrInvalidDateFormat,
	models.ErrUnknownColumn,
	models.ErrReadOnlyColumn,
	models.ErrInvalidValue,
}

// writeInventoryError maps domain errors to status codes. Anything unrecognised is logged
// under op and answered with a generic 500.
func writeInventoryError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var fe *models.FieldError
	for _, target := range badRequestErrors {
		if !errors.Is(err, target) {
			continue
		}
		if errors.As(err, &fe) {
			detail := fe.Err.Error()
			if fe.Detail != "" {
				detail = fe.Detail
			}
			JSONValidationError(w, err.Error(), map[string]string{fe.Field: detail}, http.StatusBadRequest)
			return
		}
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		JSONError(w, models.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrDuplicateAsset):
		JSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrAuditWriteFailure):
		JSONError(w, models.ErrAuditWriteFailure.Error(), http.StatusInternalServerError)
	default:
		slog.ErrorContext(r.Context(), op+" failed", "path", r.URL.Path, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
