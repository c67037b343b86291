// Package schema enumerates the fields of a record type as an ordered list
// of field descriptors.
//
// A descriptor pairs a column name and declared kind with accessor functions,
// so exporting and importing never need to inspect a type at run time once a
// schema exists. Schemas can be registered explicitly:
//
//	type Item struct {
//	    Name string
//	    Qty  int
//	}
//
//	items := schema.New[Item]("Items",
//	    schema.String("Name", func(i *Item) string { return i.Name }, func(i *Item, v string) { i.Name = v }),
//	    schema.Int("Qty", func(i *Item) int { return i.Qty }, func(i *Item, v int) { i.Qty = v }),
//	)
//
// or derived once from the struct definition with [Reflect].
package schema

import (
	"errors"

	"golang.org/x/text/cases"

	"github.com/tsawler/tabulate/model"
)

var (
	// ErrOutOfRange is returned by a setter when a value does not fit the
	// field's Go type.
	ErrOutOfRange = errors.New("value out of range")

	// ErrKindMismatch is returned by a setter handed a value of the wrong kind.
	ErrKindMismatch = errors.New("value kind does not match field")
)

// Field describes one column of a record type.
type Field[T any] struct {
	Name    string
	Kind    model.Kind // Declared kind
	Ordinal int        // Position in the schema, assigned by New
	GoType  string     // Go type name, informational

	// Get reads the field from a record. It must not modify the record.
	Get func(rec *T) model.Value

	// Set stores a decoded value in a record. An empty value resets the field
	// to its zero value.
	Set func(rec *T, v model.Value) error
}

// Schema is an ordered, immutable set of field descriptors for T.
type Schema[T any] struct {
	title  string
	fields []Field[T]
	byName map[string]int // case-folded name -> index
}

// New creates a schema from explicitly registered fields. Ordinals are
// assigned in argument order. When two fields fold to the same name, lookups
// resolve to the first.
func New[T any](title string, fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		title:  title,
		fields: make([]Field[T], len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		f.Ordinal = i
		s.fields[i] = f
		key := fold(f.Name)
		if _, dup := s.byName[key]; !dup {
			s.byName[key] = i
		}
	}
	return s
}

// Title returns the collection name used for sheet and document titles.
func (s *Schema[T]) Title() string {
	return s.title
}

// Len returns the number of fields.
func (s *Schema[T]) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the field descriptors in declaration order.
func (s *Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the descriptor at ordinal i.
func (s *Schema[T]) Field(i int) Field[T] {
	return s.fields[i]
}

// Names returns the field names in declaration order.
func (s *Schema[T]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by name, ignoring case. Matching uses full Unicode
// case folding, so "STRASSE" matches "Straße".
func (s *Schema[T]) Lookup(name string) (Field[T], bool) {
	i, ok := s.byName[fold(name)]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// fold returns the case-folded form of s. A Caser is stateful, so a fresh
// one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
