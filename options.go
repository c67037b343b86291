package tabulate

import (
	"log/slog"
	"time"

	"github.com/tsawler/tabulate/format"
)

// DefaultCreator is the application name written into document metadata when
// no creator is configured.
const DefaultCreator = "tabulate"

// exportOptions holds configuration for document export.
type exportOptions struct {
	format  format.Format // Unknown means "decide at the terminal call"
	title   string        // Overrides the pluralized type name when set
	creator string
	created time.Time
	font    []byte // TrueType data for PDF text; never mutated
	logger  *slog.Logger
}

// defaultExportOptions returns the default export options.
func defaultExportOptions() exportOptions {
	return exportOptions{
		format:  format.Unknown,
		creator: DefaultCreator,
		logger:  discardLogger(),
	}
}

// clone returns a copy of o. All fields are values or shared read-only
// pointers, so a shallow copy is enough.
func (o exportOptions) clone() exportOptions {
	return o
}

// importOptions holds configuration for document import.
type importOptions struct {
	skipHeader bool
	sheet      string // Worksheet name; the first sheet when empty
	logger     *slog.Logger
}

// defaultImportOptions returns the default import options.
func defaultImportOptions() importOptions {
	return importOptions{
		skipHeader: true,
		logger:     discardLogger(),
	}
}

func (o importOptions) clone() importOptions {
	return o
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
