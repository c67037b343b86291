package tabulate

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tsawler/tabulate/docx"
	"github.com/tsawler/tabulate/format"
	"github.com/tsawler/tabulate/htmldoc"
	"github.com/tsawler/tabulate/internal/fileutil"
	"github.com/tsawler/tabulate/model"
	"github.com/tsawler/tabulate/pdf"
	"github.com/tsawler/tabulate/schema"
	"github.com/tsawler/tabulate/tabular"
	"github.com/tsawler/tabulate/xlsx"
)

// Exporter renders a collection of records as a document.
// Configuration methods return a new Exporter, so a configured exporter can
// be shared and reused.
type Exporter[T any] struct {
	items   []T
	schema  *schema.Schema[T]
	options exportOptions
}

// clone creates a copy of the Exporter for method chaining. The items slice
// is shared; exporters never modify it.
func (e *Exporter[T]) clone() *Exporter[T] {
	return &Exporter[T]{
		items:   e.items,
		schema:  e.schema,
		options: e.options.clone(),
	}
}

// Format selects the output format. When left unset, SaveToFile uses the
// file extension and the other terminal methods produce XLSX.
func (e *Exporter[T]) Format(f format.Format) *Exporter[T] {
	n := e.clone()
	n.options.format = f
	return n
}

// Title overrides the document title, which otherwise is the pluralized
// name of T.
func (e *Exporter[T]) Title(title string) *Exporter[T] {
	n := e.clone()
	n.options.title = title
	return n
}

// Creator sets the application name recorded in the document metadata.
func (e *Exporter[T]) Creator(creator string) *Exporter[T] {
	n := e.clone()
	n.options.creator = creator
	return n
}

// Font sets TrueType font data used for PDF text. Without it PDF output uses
// the core Helvetica font, which cannot show characters outside cp1252.
func (e *Exporter[T]) Font(ttf []byte) *Exporter[T] {
	n := e.clone()
	n.options.font = ttf
	return n
}

// CreatedAt sets the creation time recorded in the document metadata.
// Fixing it makes output byte-for-byte reproducible.
func (e *Exporter[T]) CreatedAt(t time.Time) *Exporter[T] {
	n := e.clone()
	n.options.created = t
	return n
}

// WithSchema uses s instead of deriving a schema from T by reflection.
func (e *Exporter[T]) WithSchema(s *schema.Schema[T]) *Exporter[T] {
	n := e.clone()
	n.schema = s
	return n
}

// Logger sets the logger used for debug output. A nil logger discards.
func (e *Exporter[T]) Logger(l *slog.Logger) *Exporter[T] {
	n := e.clone()
	if l == nil {
		l = discardLogger()
	}
	n.options.logger = l
	return n
}

// Table builds the intermediate table without rendering a document.
func (e *Exporter[T]) Table() (*model.Table, error) {
	_, t, err := e.build()
	return t, err
}

// WriteTo renders the document to w. It implements io.WriterTo.
func (e *Exporter[T]) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := e.render(cw, e.outputFormat())
	return cw.n, err
}

// Bytes renders the document into memory.
func (e *Exporter[T]) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.render(&buf, e.outputFormat()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stream renders the document and returns a reader positioned at its start.
func (e *Exporter[T]) Stream() (*bytes.Reader, error) {
	data, err := e.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// SaveToFile renders the document to path. The document is written to a
// temporary file in the same directory and renamed into place, so a failed
// export leaves neither a partial target nor a stray temporary file.
// Without an explicit Format the extension of path decides; an unknown
// extension fails with model.ErrUnknownFormat.
func (e *Exporter[T]) SaveToFile(path string) error {
	f := e.options.format
	if f == format.Unknown {
		f = format.Detect(path)
	}
	if f == format.Unknown {
		return fmt.Errorf("save %s: %w", path, model.ErrUnknownFormat)
	}

	err := fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return e.render(w, f)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	e.options.logger.Debug("saved document", slog.String("path", path), slog.String("format", f.String()))
	return nil
}

func (e *Exporter[T]) outputFormat() format.Format {
	if e.options.format == format.Unknown {
		return format.XLSX
	}
	return e.options.format
}

func (e *Exporter[T]) resolveSchema() (*schema.Schema[T], error) {
	if e.schema != nil {
		return e.schema, nil
	}
	s, err := schema.Reflect[T]()
	if err != nil {
		return nil, err
	}
	e.options.logger.Debug("derived schema", slog.String("title", s.Title()), slog.Any("fields", s.Names()))
	return s, nil
}

func (e *Exporter[T]) build() (*schema.Schema[T], *model.Table, error) {
	s, err := e.resolveSchema()
	if err != nil {
		return nil, nil, err
	}

	t := tabular.Build(s, e.items)
	if e.options.title != "" {
		t.Title = e.options.title
	}

	e.options.logger.Debug("built table",
		slog.String("title", t.Title),
		slog.Int("rows", t.RowCount()),
		slog.Int("columns", s.Len()))

	return s, t, nil
}

// render writes the document for format f.
func (e *Exporter[T]) render(w io.Writer, f format.Format) error {
	s, t, err := e.build()
	if err != nil {
		return err
	}

	opts := e.options
	switch f {
	case format.XLSX:
		err = xlsx.Write(w, t, xlsx.WriteOptions{Creator: opts.creator, Created: opts.created})
	case format.DOCX:
		err = docx.Write(w, t, docx.WriteOptions{Creator: opts.creator, Created: opts.created})
	case format.PDF:
		layout := pdf.EstimateColumnWidths(t, fieldKinds(s))
		opts.logger.Debug("estimated pdf layout",
			slog.Bool("compact", layout.Compact),
			slog.String("page", pdf.PageSize(layout)))
		err = pdf.Write(w, t, layout, pdf.WriteOptions{Creator: opts.creator, Created: opts.created, Font: opts.font})
	case format.HTML:
		err = htmldoc.Write(w, t, htmldoc.WriteOptions{Creator: opts.creator})
	default:
		return fmt.Errorf("export %s: %w", f, model.ErrUnknownFormat)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}

	opts.logger.Debug("exported document",
		slog.String("format", f.String()),
		slog.Int("records", len(e.items)))
	return nil
}

func fieldKinds[T any](s *schema.Schema[T]) []model.Kind {
	kinds := make([]model.Kind, s.Len())
	for i, f := range s.Fields() {
		kinds[i] = f.Kind
	}
	return kinds
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
