package models

import "errors"

var (
	ErrUnknownTableType        = errors.New("unknown table type")
	ErrNotFound                = errors.New("asset not found")
	ErrNoFieldsToUpdate        = errors.New("no fields to update")
	ErrInvalidDateFormat       = errors.New("invalid date format")
	ErrMissingRequiredKeyField = errors.New("missing required key field")
	ErrAuditWriteFailure       = errors.New("asset updated but audit trail may be incomplete")

	ErrUnknownColumn  = errors.New("unknown column")
	ErrReadOnlyColumn = errors.New("column is read-only")
	ErrDuplicateAsset = errors.New("asset already exists")
	ErrInvalidValue   = errors.New("invalid value")
)

// FieldError ties a validation failure to the field that caused it.
type FieldError struct {
	Field  string
	Err    error
	Detail string
}

func (e *FieldError) Error() string {
	msg := e.Err.Error() + " for " + e.Field
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Err }
