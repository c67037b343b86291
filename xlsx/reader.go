package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/tabulate/coerce"
	"github.com/tsawler/tabulate/model"
)

// Reader provides access to XLSX document content.
type Reader struct {
	closer        io.Closer
	files         []*zip.File
	workbook      *workbookXML
	sharedStrings []string
	styles        *stylesXML
	dateStyles    map[int]bool // style index -> number format is a date
	rels          *relationshipsXML
	coreProps     *corePropertiesXML
	appProps      *appPropertiesXML
	sheets        []*Sheet
	sheetRels     map[string]string // RID -> target path
}

// Open opens an XLSX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, &model.MalformedDocumentError{Reason: "opening ZIP archive", Err: err}
	}

	r, err := newReader(zr.File)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.closer = zr
	return r, nil
}

// NewReader reads an XLSX document from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &model.MalformedDocumentError{Reason: "opening ZIP archive", Err: err}
	}
	return newReader(zr.File)
}

// OpenBytes reads an XLSX document held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

func newReader(files []*zip.File) (*Reader, error) {
	r := &Reader{
		files:      files,
		sheetRels:  make(map[string]string),
		dateStyles: make(map[int]bool),
	}

	// Validate required files exist
	if err := r.validate(); err != nil {
		return nil, err
	}

	// Parse relationships first
	if err := r.parseRelationships(); err != nil {
		return nil, &model.MalformedDocumentError{Reason: "parsing relationships", Err: err}
	}

	// Parse workbook to get sheet list
	if err := r.parseWorkbook(); err != nil {
		return nil, &model.MalformedDocumentError{Reason: "parsing workbook", Err: err}
	}

	// Shared strings and styles are optional
	_ = r.parseSharedStrings()
	_ = r.parseStyles()

	if err := r.parseWorksheets(); err != nil {
		return nil, err
	}

	r.parseCoreProperties()
	r.parseAppProperties()

	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// validate checks that required XLSX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"xl/workbook.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.files {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return &model.MalformedDocumentError{Reason: "missing required file " + name}
		}
	}

	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.files {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseRelationships parses the workbook relationships file.
func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("xl/_rels/workbook.xml.rels")
	if err != nil {
		// Try alternate location
		data, err = r.getFileContent("xl/_rels/workbook.rels")
		if err != nil {
			return nil // Relationships are optional
		}
	}

	r.rels = &relationshipsXML{}
	if err := xml.Unmarshal(data, r.rels); err != nil {
		return err
	}

	for _, rel := range r.rels.Relationship {
		r.sheetRels[rel.ID] = rel.Target
	}

	return nil
}

// parseWorkbook parses the main workbook file.
func (r *Reader) parseWorkbook() error {
	data, err := r.getFileContent("xl/workbook.xml")
	if err != nil {
		return err
	}

	r.workbook = &workbookXML{}
	return xml.Unmarshal(data, r.workbook)
}

// parseSharedStrings parses the shared strings table.
func (r *Reader) parseSharedStrings() error {
	data, err := r.getFileContent("xl/sharedStrings.xml")
	if err != nil {
		return err
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return err
	}

	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		if len(si.R) == 0 {
			r.sharedStrings[i] = si.T
			continue
		}
		// Rich text - concatenate all runs
		var text strings.Builder
		for _, run := range si.R {
			text.WriteString(run.T)
		}
		r.sharedStrings[i] = text.String()
	}

	return nil
}

// parseStyles parses the styles file and records which cell styles carry a
// date number format.
func (r *Reader) parseStyles() error {
	data, err := r.getFileContent("xl/styles.xml")
	if err != nil {
		return err
	}

	r.styles = &stylesXML{}
	if err := xml.Unmarshal(data, r.styles); err != nil {
		return err
	}

	custom := make(map[int]string)
	if r.styles.NumFmts != nil {
		for _, nf := range r.styles.NumFmts.NumFmt {
			custom[nf.NumFmtID] = nf.FormatCode
		}
	}
	if r.styles.CellXfs != nil {
		for i, xf := range r.styles.CellXfs.Xf {
			if code, ok := custom[xf.NumFmtID]; ok {
				r.dateStyles[i] = isDateFormatCode(code)
			} else {
				r.dateStyles[i] = isBuiltinDateFormat(xf.NumFmtID)
			}
		}
	}

	return nil
}

// parseWorksheets parses all worksheet files.
func (r *Reader) parseWorksheets() error {
	r.sheets = make([]*Sheet, 0, len(r.workbook.Sheets.Sheet))

	for i, sheetRef := range r.workbook.Sheets.Sheet {
		// Find the sheet file path from relationships
		target := r.sheetRels[sheetRef.RID]
		if target == "" {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}

		// Normalize path
		if !strings.HasPrefix(target, "xl/") && !strings.HasPrefix(target, "/") {
			target = "xl/" + target
		}
		target = strings.TrimPrefix(target, "/")

		data, err := r.getFileContent(target)
		if err != nil {
			continue // Skip sheets we can't read
		}

		sheet, err := r.parseWorksheet(data, sheetRef.Name, len(r.sheets))
		if err != nil {
			continue // Skip sheets that fail to parse
		}

		r.sheets = append(r.sheets, sheet)
	}

	if len(r.sheets) == 0 {
		return &model.MalformedDocumentError{Reason: "no worksheets found"}
	}

	return nil
}

// parseWorksheet parses a single worksheet.
func (r *Reader) parseWorksheet(data []byte, name string, index int) (*Sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	sheet := &Sheet{
		Name:  name,
		Index: index,
	}

	// First pass: find the extent of each row. Rows and cells may omit their
	// references, in which case they follow the previous one. Cells without
	// a value (style-only placeholders) do not extend the grid.
	widths := make(map[int]int)
	maxRow := 0
	maxCol := -1
	rowNum := 0
	for ri := range ws.SheetData.Rows {
		row := &ws.SheetData.Rows[ri]
		if row.R <= 0 {
			row.R = rowNum + 1
		}
		rowNum = row.R

		col := -1
		for ci := range row.Cells {
			c := &row.Cells[ci]
			if c.R == "" {
				c.R = Ref{Col: col + 1, Row: row.R - 1}.String()
			}
			ref, err := ParseRef(c.R)
			if err != nil {
				continue
			}
			col = ref.Col
			if !c.hasValue() {
				continue
			}
			if col+1 > widths[row.R] {
				widths[row.R] = col + 1
			}
			if row.R > maxRow {
				maxRow = row.R
			}
			if col > maxCol {
				maxCol = col
			}
		}
	}

	sheet.MaxRow = maxRow - 1 // Convert to 0-indexed
	sheet.MaxCol = maxCol

	sheet.Rows = make([][]Cell, maxRow)
	for i := range sheet.Rows {
		sheet.Rows[i] = make([]Cell, widths[i+1])
		for j := range sheet.Rows[i] {
			sheet.Rows[i][j] = Cell{Row: i, Col: j, Kind: model.KindEmpty}
		}
	}

	// Second pass: populate cells
	for _, row := range ws.SheetData.Rows {
		rowIdx := row.R - 1
		if rowIdx < 0 || rowIdx >= len(sheet.Rows) {
			continue
		}

		for _, cx := range row.Cells {
			ref, err := ParseRef(cx.R)
			if err != nil || ref.Col >= len(sheet.Rows[rowIdx]) {
				continue
			}

			cell := &sheet.Rows[rowIdx][ref.Col]
			cell.RawValue = cx.V
			cell.StyleIndex = cx.S
			cell.Formula = cx.F
			r.classify(cell, cx)
		}
	}

	return sheet, nil
}

// classify sets the kind and text of a cell from its XML type attribute.
func (r *Reader) classify(cell *Cell, cx cellXML) {
	switch cx.T {
	case "s": // Shared string
		cell.Kind = model.KindString
		idx, err := strconv.Atoi(cx.V)
		if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
			cell.Value = r.sharedStrings[idx]
		}
	case "b":
		cell.Kind = model.KindBoolean
		if cx.V == "1" {
			cell.Value = "TRUE"
		} else {
			cell.Value = "FALSE"
		}
	case "e":
		cell.Kind = model.KindString
		cell.IsError = true
		cell.Value = cx.V
	case "str": // Formula string result
		cell.Kind = model.KindString
		cell.Value = cx.V
	case "inlineStr":
		cell.Kind = model.KindString
		if cx.Is != nil {
			cell.Value = cx.Is.T
		}
	case "d": // ISO 8601 date, or a serial from writers that misuse the type
		cell.Value = cx.V
		if serial, ok := isoSerial(cx.V); ok {
			cell.Kind = model.KindDate
			cell.Value = serial
		} else if cx.V != "" {
			cell.Kind = model.KindString
		}
	default: // Number or empty
		if cx.V == "" {
			return
		}
		cell.Value = cx.V
		switch {
		case r.dateStyles[cx.S]:
			cell.Kind = model.KindDate
		case strings.ContainsAny(cx.V, ".eE"):
			cell.Kind = model.KindFloat
		default:
			cell.Kind = model.KindInteger
		}
	}
}

// isoLayouts are the ISO 8601 forms found in t="d" cells.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"T15:04:05.999999999",
	"15:04:05.999999999",
}

// isoSerial converts the text of a t="d" cell to a day-count serial. Text
// that already is a number is returned unchanged. A time without a date
// yields a fraction of a day.
func isoSerial(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return text, true
	}
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			// Time-only layouts parse into year 0.
			t = time.Date(1899, time.December, 30, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		}
		return coerce.FormatSerial(coerce.ToSerial(t)), true
	}
	return "", false
}

// parseCoreProperties parses Dublin Core metadata.
func (r *Reader) parseCoreProperties() {
	data, err := r.getFileContent("docProps/core.xml")
	if err != nil {
		return
	}

	props := &corePropertiesXML{}
	if xml.Unmarshal(data, props) == nil {
		r.coreProps = props
	}
}

// parseAppProperties parses application metadata.
func (r *Reader) parseAppProperties() {
	data, err := r.getFileContent("docProps/app.xml")
	if err != nil {
		return
	}

	props := &appPropertiesXML{}
	if xml.Unmarshal(data, props) == nil {
		r.appProps = props
	}
}

// SheetCount returns the number of sheets in the workbook.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// SheetNames returns the names of all sheets.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet at the given index (0-indexed).
func (r *Reader) Sheet(index int) (*Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (0-%d)", index, len(r.sheets)-1)
	}
	return r.sheets[index], nil
}

// SheetByName returns the sheet with the given name.
func (r *Reader) SheetByName(name string) (*Sheet, error) {
	for _, s := range r.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet not found: %s", name)
}

// FirstTable returns the first worksheet as a model.Table.
func (r *Reader) FirstTable() (*model.Table, error) {
	if len(r.sheets) == 0 {
		return nil, &model.MalformedDocumentError{Reason: "no worksheets found"}
	}
	return r.sheets[0].Table(), nil
}

// Metadata returns document metadata.
func (r *Reader) Metadata() model.Metadata {
	meta := model.Metadata{}
	if r.coreProps != nil {
		meta.Title = r.coreProps.Title
		meta.Subject = r.coreProps.Subject
	}
	if r.appProps != nil {
		meta.Creator = r.appProps.Application
	}
	return meta
}

// isBuiltinDateFormat reports whether a built-in number format id renders a
// date or time.
func isBuiltinDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormatCode reports whether a custom number format code contains
// date or time tokens outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	inQuote := false
	inBracket := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '\\':
			i++ // escaped literal
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case strings.IndexByte("dmyhsDMYHS", c) >= 0:
			return true
		}
	}
	return false
}
