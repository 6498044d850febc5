package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted date format, both on input and in returned rows.
const DateLayout = "2006-01-02"

// TimeLayout is used for create_time, change_time and audit change_time.
const TimeLayout = "15:04:05"

// NotApplicable marks a field that does not apply to the asset (e.g. the monitor of a laptop).
const NotApplicable = "N/A"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate maps nil, "" and "N/A" to nil (clear the date) and otherwise requires a real
// calendar date in YYYY-MM-DD form.
func NormalizeDate(field string, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == NotApplicable {
			return nil, nil
		}
		if !datePattern.MatchString(s) {
			return nil, &FieldError{Field: field, Err: ErrInvalidDateFormat, Detail: "expected YYYY-MM-DD"}
		}
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, &FieldError{Field: field, Err: ErrInvalidDateFormat, Detail: "expected YYYY-MM-DD"}
		}
		return s, nil
	default:
		return nil, &FieldError{Field: field, Err: ErrInvalidDateFormat, Detail: "expected YYYY-MM-DD"}
	}
}

// StoreValue checks that v is a scalar a column can hold and converts JSON numbers to text.
// Date columns are normalized with NormalizeDate.
func StoreValue(field string, v any) (any, error) {
	if IsDateColumn(field) {
		return NormalizeDate(field, v)
	}
	switch x := v.(type) {
	case nil, string, bool, int, int64, float64:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return nil, &FieldError{Field: field, Err: ErrInvalidValue, Detail: fmt.Sprintf("unsupported type %T", v)}
	}
}

// Comparable renders a value for change detection: nil and "" are the same, everything else
// compares by its string form.
func Comparable(v any) string {
	if v == nil {
		return ""
	}
	return Stringify(v)
}

// Stringify renders a value the way it is written to the history table.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// NullableString returns nil for nil, otherwise the Stringify form.
func NullableString(v any) *string {
	if v == nil {
		return nil
	}
	s := Stringify(v)
	return &s
}
