package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned when an output or input format cannot be
	// determined.
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrImportUnsupported is returned when importing from a format other
	// than XLSX.
	ErrImportUnsupported = errors.New("import is only supported for XLSX documents")
)

// MalformedDocumentError reports an input document without usable
// worksheet or table content.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed document: %s: %v", e.Reason, e.Err)
	}
	return "malformed document: " + e.Reason
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// CoercionError reports a cell whose text cannot be parsed into the kind of
// the field it maps to. Row and Column are 0-indexed table coordinates.
type CoercionError struct {
	Row    int
	Column int
	Field  string
	Kind   Kind
	Text   string
	Err    error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("cannot convert %q to %s", e.Text, e.Kind)
	if e.Field != "" {
		msg = fmt.Sprintf("row %d, column %d (%s): %s", e.Row, e.Column, e.Field, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }

// UnsupportedFieldError reports a field whose Go type has no defined
// coercion from cell text.
type UnsupportedFieldError struct {
	Field string
	Type  string
}

func (e *UnsupportedFieldError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("field %s: unsupported field type", e.Field)
	}
	return fmt.Sprintf("field %s: unsupported field type %s", e.Field, e.Type)
}
