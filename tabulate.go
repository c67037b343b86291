// Package tabulate exports slices of flat record structs to XLSX, DOCX, PDF
// and HTML documents, and imports XLSX documents back into typed records.
//
// Basic usage:
//
//	type Person struct {
//	    Name     string
//	    Age      int
//	    Birthday time.Time
//	}
//
//	err := tabulate.Export(people).SaveToFile("people.xlsx")
//	if err != nil {
//	    // handle error
//	}
//
//	people, err := tabulate.Import[Person]().FromFile("people.xlsx")
//
// With options:
//
//	data, err := tabulate.Export(people).
//	    Format(format.PDF).
//	    Title("Staff").
//	    Bytes()
//
// Columns are the exported fields of the record type in declaration order.
// A `tabulate:"Name"` struct tag renames a column and `tabulate:"-"` skips a
// field. For the lower-level building blocks see the schema, tabular, xlsx,
// docx, pdf and htmldoc packages.
package tabulate

import (
	"github.com/tsawler/tabulate/format"
)

// Export returns an Exporter for items with default options: a schema
// derived from T, the pluralized type name as title, and XLSX output unless
// a format is chosen.
//
// Example:
//
//	err := tabulate.Export(people).SaveToFile("people.docx")
func Export[T any](items []T) *Exporter[T] {
	return &Exporter[T]{
		items:   items,
		options: defaultExportOptions(),
	}
}

// Import returns an Importer for records of type T. The header row is
// skipped by default.
//
// Example:
//
//	people, err := tabulate.Import[Person]().FromFile("people.xlsx")
func Import[T any]() *Importer[T] {
	return &Importer[T]{
		options: defaultImportOptions(),
	}
}

// SaveToFile exports items to path, choosing the format from the extension.
func SaveToFile[T any](items []T, path string) error {
	return Export(items).SaveToFile(path)
}

// ToBytes exports items in format f.
func ToBytes[T any](items []T, f format.Format) ([]byte, error) {
	return Export(items).Format(f).Bytes()
}

// FromFile imports records of type T from the XLSX document at path.
func FromFile[T any](path string) ([]T, error) {
	return Import[T]().FromFile(path)
}

// FromBytes imports records of type T from an XLSX document held in memory.
func FromBytes[T any](data []byte) ([]T, error) {
	return Import[T]().FromBytes(data)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	data := tabulate.Must(tabulate.ToBytes(people, format.XLSX))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
