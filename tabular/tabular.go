// Package tabular maps record collections to tables and back.
//
// Build lays out one header row of field names followed by one row per
// record. Parse reverses it: the header row decides which column feeds which
// field, so column order in the document does not matter.
package tabular

import (
	"errors"
	"strings"

	"github.com/tsawler/tabulate/coerce"
	"github.com/tsawler/tabulate/model"
	"github.com/tsawler/tabulate/schema"
)

// Build assembles a table from items using the field order of s. The table
// always has len(items)+1 rows and s.Len() columns in every row.
func Build[T any](s *schema.Schema[T], items []T) *model.Table {
	fields := s.Fields()
	t := model.NewTable(s.Title())
	t.Rows = make([][]model.Cell, 0, len(items)+1)

	header := make([]model.Cell, len(fields))
	for i, f := range fields {
		header[i] = model.StringCell(f.Name)
	}
	t.AppendRow(header...)

	for i := range items {
		row := make([]model.Cell, len(fields))
		for j, f := range fields {
			row[j] = coerce.Encode(f.Get(&items[i]))
		}
		t.AppendRow(row...)
	}

	return t
}

// Mapping associates table columns with schema fields.
type Mapping[T any] struct {
	Columns map[int]schema.Field[T] // column index -> field
	Ignored []string                // header texts that matched no field
	Missing []string                // fields with no header column
}

// MapHeader matches header texts to fields, ignoring case. Columns whose
// header matches nothing are left out of the mapping.
func MapHeader[T any](s *schema.Schema[T], header []string) Mapping[T] {
	m := Mapping[T]{Columns: make(map[int]schema.Field[T], len(header))}
	seen := make(map[int]bool, s.Len())

	for col, text := range header {
		f, ok := s.Lookup(text)
		if !ok {
			m.Ignored = append(m.Ignored, text)
			continue
		}
		m.Columns[col] = f
		seen[f.Ordinal] = true
	}

	for _, f := range s.Fields() {
		if !seen[f.Ordinal] {
			m.Missing = append(m.Missing, f.Name)
		}
	}

	return m
}

// Parse reconstructs records from a table. Row 0 is always read as the
// header to build the column mapping; when skipHeader is false it is also
// turned into a record. The first cell that fails to convert aborts the
// whole parse with a *model.CoercionError.
func Parse[T any](s *schema.Schema[T], t *model.Table, skipHeader bool) ([]T, error) {
	if t == nil || len(t.Rows) == 0 {
		return []T{}, nil
	}

	m := MapHeader(s, t.Header())
	return ParseWithMapping(m, t, skipHeader)
}

// ParseWithMapping is Parse with a precomputed column mapping.
func ParseWithMapping[T any](m Mapping[T], t *model.Table, skipHeader bool) ([]T, error) {
	if t == nil || len(t.Rows) == 0 {
		return []T{}, nil
	}

	start := 0
	if skipHeader {
		start = 1
	}

	out := make([]T, 0, len(t.Rows)-start)
	for r := start; r < len(t.Rows); r++ {
		var rec T
		for col, cell := range t.Rows[r] {
			f, ok := m.Columns[col]
			if !ok {
				continue
			}
			if err := setCell(&rec, f, cell.Text, r, col); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}

	return out, nil
}

func setCell[T any](rec *T, f schema.Field[T], text string, row, col int) error {
	if f.Kind == model.KindOther {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return &model.UnsupportedFieldError{Field: f.Name, Type: f.GoType}
	}

	v, err := coerce.Decode(text, f.Kind)
	if err != nil {
		var ce *model.CoercionError
		if errors.As(err, &ce) {
			ce.Row, ce.Column, ce.Field = row, col, f.Name
			return ce
		}
		return err
	}

	if err := f.Set(rec, v); err != nil {
		var ue *model.UnsupportedFieldError
		if errors.As(err, &ue) {
			return err
		}
		return &model.CoercionError{Row: row, Column: col, Field: f.Name, Kind: f.Kind, Text: text, Err: err}
	}
	return nil
}
