package tabulate

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/tabulate/format"
	"github.com/tsawler/tabulate/model"
	"github.com/tsawler/tabulate/schema"
	"github.com/tsawler/tabulate/tabular"
	"github.com/tsawler/tabulate/xlsx"
)

// Importer reads records of type T back from an XLSX document.
// Like Exporter, configuration methods return a new Importer.
type Importer[T any] struct {
	schema  *schema.Schema[T]
	options importOptions
}

func (im *Importer[T]) clone() *Importer[T] {
	return &Importer[T]{
		schema:  im.schema,
		options: im.options.clone(),
	}
}

// SkipHeader controls whether the header row is skipped. It defaults to
// true; when false the header row is also converted into a record.
func (im *Importer[T]) SkipHeader(skip bool) *Importer[T] {
	n := im.clone()
	n.options.skipHeader = skip
	return n
}

// Sheet selects a worksheet by name instead of the first one.
func (im *Importer[T]) Sheet(name string) *Importer[T] {
	n := im.clone()
	n.options.sheet = name
	return n
}

// WithSchema uses s instead of deriving a schema from T by reflection.
func (im *Importer[T]) WithSchema(s *schema.Schema[T]) *Importer[T] {
	n := im.clone()
	n.schema = s
	return n
}

// Logger sets the logger used for debug output. A nil logger discards.
func (im *Importer[T]) Logger(l *slog.Logger) *Importer[T] {
	n := im.clone()
	if l == nil {
		l = discardLogger()
	}
	n.options.logger = l
	return n
}

// FromStream reads the whole of r and imports it.
func (im *Importer[T]) FromStream(r io.Reader) ([]T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("import: reading stream: %w", err)
	}
	return im.FromBytes(data)
}

// FromBytes imports an XLSX document held in memory.
func (im *Importer[T]) FromBytes(data []byte) ([]T, error) {
	return im.fromReaderAt(bytes.NewReader(data), int64(len(data)))
}

// FromFile imports the XLSX document at path. The file is closed before
// FromFile returns.
func (im *Importer[T]) FromFile(path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	im.options.logger.Debug("importing file", slog.String("path", path), slog.Int64("size", info.Size()))
	return im.fromReaderAt(f, info.Size())
}

// FromTable converts an already parsed table into records.
func (im *Importer[T]) FromTable(t *model.Table) ([]T, error) {
	s, err := im.resolveSchema()
	if err != nil {
		return nil, err
	}
	if t == nil || len(t.Rows) == 0 {
		return []T{}, nil
	}

	m := tabular.MapHeader(s, t.Header())
	if len(m.Ignored) > 0 {
		im.options.logger.Debug("ignoring unmatched columns", slog.Any("columns", m.Ignored))
	}
	if len(m.Missing) > 0 {
		im.options.logger.Debug("fields without a column", slog.Any("fields", m.Missing))
	}

	records, err := tabular.ParseWithMapping(m, t, im.options.skipHeader)
	if err != nil {
		return nil, err
	}

	im.options.logger.Debug("imported records", slog.Int("records", len(records)))
	return records, nil
}

func (im *Importer[T]) fromReaderAt(r io.ReaderAt, size int64) ([]T, error) {
	f, err := format.DetectFromReader(r, size)
	if err != nil {
		return nil, err
	}
	if f != format.Unknown && !f.Importable() {
		return nil, fmt.Errorf("import %s: %w", f, model.ErrImportUnsupported)
	}

	xr, err := xlsx.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	defer xr.Close()

	t, err := im.sheetTable(xr)
	if err != nil {
		return nil, err
	}
	return im.FromTable(t)
}

func (im *Importer[T]) sheetTable(xr *xlsx.Reader) (*model.Table, error) {
	if im.options.sheet == "" {
		return xr.FirstTable()
	}
	sheet, err := xr.SheetByName(im.options.sheet)
	if err != nil {
		return nil, &model.MalformedDocumentError{Reason: "selecting worksheet", Err: err}
	}
	return sheet.Table(), nil
}

func (im *Importer[T]) resolveSchema() (*schema.Schema[T], error) {
	if im.schema != nil {
		return im.schema, nil
	}
	return schema.Reflect[T]()
}
