// Package model provides the intermediate representation shared by every
// document writer and reader in tabulate.
//
// A record collection is exported by first turning it into a [Table]: an
// ordered list of rows whose first row holds the column headers. Each [Cell]
// carries its textual form together with a [Kind] tag, which tells readers how
// the text must be interpreted (a date cell holds a day-count serial, not a
// calendar string).
//
// Field values travel between records and cells as [Value], a small tagged
// union over the kinds a cell can hold:
//
//	v := model.Int(42)
//	if v.Kind() == model.KindInteger {
//	    n := v.Int()
//	}
//
// # Errors
//
// The error taxonomy used across the module lives here as well:
// [MalformedDocumentError], [CoercionError] and [UnsupportedFieldError].
package model
