package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names ("deviceType") rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the body into v. Numbers decode as json.Number so column values keep
// their exact text.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// writeDecodeError answers a body that could not be read: 413 when it was too large,
// 400 otherwise.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	JSONError(w, "invalid JSON", http.StatusBadRequest)
}

// validateInput runs struct validation and writes a 400 with per-field tags on failure.
func validateInput(w http.ResponseWriter, input any) bool {
	err := validate.Struct(input)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		JSONError(w, "validation failed", http.StatusBadRequest)
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[fe.Field()] = msg
	}
	JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
	return false
}

// pagination reads limit and offset; limit 0 means no limit.
func pagination(r *http.Request) (limit, offset int) {
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}
	return limit, offset
}

// queryFilters returns every query parameter except limit and offset as a column filter.
func queryFilters(r *http.Request) map[string]string {
	filters := make(map[string]string)
	for k, v := range r.URL.Query() {
		if k == "limit" || k == "offset" || len(v) == 0 {
			continue
		}
		filters[k] = v[0]
	}
	return filters
}
