package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tsawler/tabulate/model"
)

const (
	maxSheetNameLen = 31
	dateNumFmtID    = 164
	dateFormatCode  = "yyyy-mm-dd hh:mm:ss"
	dateStyleIndex  = 1
	maxColumnWidth  = 60
)

// WriteOptions controls workbook-level properties of a written document.
type WriteOptions struct {
	SheetName string    // Defaults to the table title, then "Sheet1"
	Creator   string    // Written to docProps/app.xml
	Created   time.Time // Written to docProps/core.xml when non-zero
}

// part is one file of the package.
type part struct {
	name        string
	contentType string
	body        any
}

// Write serializes t as a single-sheet workbook. Strings go to the shared
// strings table, booleans are written as boolean cells and dates as numbers
// with a date number format. Empty cells are omitted.
func Write(w io.Writer, t *model.Table, opts WriteOptions) error {
	name := opts.SheetName
	if name == "" {
		name = t.Title
	}
	name = SanitizeSheetName(name)

	sheet, sst := buildWorksheet(t)

	parts := []part{
		{"xl/workbook.xml", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml", &workbookOut{
			Xmlns:  nsSpreadsheetML,
			XmlnsR: nsRelationships,
			Sheets: []sheetRefOut{{Name: name, SheetID: 1, RID: "rId1"}},
		}},
		{"xl/worksheets/sheet1.xml", "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml", sheet},
		{"xl/styles.xml", "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml", buildStyles()},
		{"xl/sharedStrings.xml", "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml", sst},
		{"docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml", buildCoreProps(t.Title, opts)},
		{"docProps/app.xml", "application/vnd.openxmlformats-officedocument.extended-properties+xml", &appPropertiesOut{
			Xmlns:       nsExtendedProps,
			Application: opts.Creator,
		}},
	}

	ct := &contentTypesOut{
		Xmlns: nsContentTypes,
		Defaults: []defaultOut{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
	}
	for _, p := range parts {
		ct.Override = append(ct.Override, overrideOut{PartName: "/" + p.name, ContentType: p.contentType})
	}

	rootRels := &relationshipsOut{
		Xmlns: nsPackageRels,
		Relationships: []relationshipXML{
			{ID: "rId1", Type: relOfficeDocument, Target: "xl/workbook.xml"},
			{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
			{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
		},
	}
	workbookRels := &relationshipsOut{
		Xmlns: nsPackageRels,
		Relationships: []relationshipXML{
			{ID: "rId1", Type: relWorksheet, Target: "worksheets/sheet1.xml"},
			{ID: "rId2", Type: relStyles, Target: "styles.xml"},
			{ID: "rId3", Type: relSharedStrings, Target: "sharedStrings.xml"},
		},
	}

	zw := zip.NewWriter(w)
	files := append([]part{
		{name: "[Content_Types].xml", body: ct},
		{name: "_rels/.rels", body: rootRels},
		{name: "xl/_rels/workbook.xml.rels", body: workbookRels},
	}, parts...)

	for _, p := range files {
		if err := writePart(zw, p.name, p.body); err != nil {
			zw.Close()
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}

	return zw.Close()
}

func writePart(zw *zip.Writer, name string, body any) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fw, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(fw).Encode(body)
}

// sharedStrings collects unique strings in first-use order.
type sharedStrings struct {
	index map[string]int
	out   sharedStringsOut
}

func (s *sharedStrings) add(text string) int {
	s.out.Count++
	if i, ok := s.index[text]; ok {
		return i
	}
	i := len(s.out.SI)
	s.index[text] = i
	si := siOut{T: textOut{Value: text}}
	if strings.TrimSpace(text) != text {
		si.T.Space = "preserve"
	}
	s.out.SI = append(s.out.SI, si)
	return i
}

func buildWorksheet(t *model.Table) (*worksheetOut, *sharedStringsOut) {
	sst := &sharedStrings{
		index: make(map[string]int),
		out:   sharedStringsOut{Xmlns: nsSpreadsheetML},
	}
	ws := &worksheetOut{
		Xmlns:  nsSpreadsheetML,
		XmlnsR: nsRelationships,
	}

	cols := t.ColCount()
	widths := make([]int, cols)

	for r, row := range t.Rows {
		out := rowOut{R: r + 1}
		for c, cell := range row {
			if cell.Kind == model.KindEmpty || cell.Text == "" {
				continue
			}
			co := cellOut{R: Ref{Col: c, Row: r}.String()}
			switch cell.Kind {
			case model.KindInteger, model.KindFloat:
				co.V = cell.Text
			case model.KindBoolean:
				co.T = "b"
				co.V = cell.Text
			case model.KindDate:
				co.S = dateStyleIndex
				co.V = cell.Text
			default:
				co.T = "s"
				co.V = fmt.Sprint(sst.add(cell.Text))
			}
			out.Cells = append(out.Cells, co)

			if n := utf8.RuneCountInString(cell.PlainText()); n > widths[c] {
				widths[c] = n
			}
		}
		ws.SheetData.Rows = append(ws.SheetData.Rows, out)
	}

	sst.out.Unique = len(sst.out.SI)

	if len(t.Rows) > 0 && cols > 0 {
		ws.Dimension = &dimensionXML{Ref: Range{To: Ref{Col: cols - 1, Row: len(t.Rows) - 1}}.String()}
		ws.Cols = &colsOut{}
		for c, n := range widths {
			ws.Cols.Col = append(ws.Cols.Col, colOut{
				Min:         c + 1,
				Max:         c + 1,
				Width:       columnWidth(n),
				CustomWidth: 1,
			})
		}
	}

	return ws, &sst.out
}

// columnWidth converts a character count to a column width, with padding
// and a cap so long text does not produce unusable columns.
func columnWidth(chars int) float64 {
	w := float64(chars) + 2
	if w < 8.43 {
		return 8.43
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}

func buildStyles() *stylesOut {
	return &stylesOut{
		Xmlns: nsSpreadsheetML,
		NumFmts: numFmtsOut{
			Count:  1,
			NumFmt: []numFmtXML{{NumFmtID: dateNumFmtID, FormatCode: dateFormatCode}},
		},
		Fonts: fontsOut{
			Count: 1,
			Font:  []fontOut{{Sz: valOut{Val: "11"}, Name: valOut{Val: "Calibri"}}},
		},
		Fills: fillsOut{
			Count: 2,
			Fill:  []fillOut{patternFill("none"), patternFill("gray125")},
		},
		Borders: bordersOut{Count: 1, Border: []borderOut{{}}},
		CellStyleXfs: xfsOut{
			Count: 1,
			Xf:    []xfOut{{}},
		},
		CellXfs: xfsOut{
			Count: 2,
			Xf: []xfOut{
				{},
				{NumFmtID: dateNumFmtID, ApplyNumberFormat: 1},
			},
		},
	}
}

func patternFill(pattern string) fillOut {
	var f fillOut
	f.PatternFill.PatternType = pattern
	return f
}

func buildCoreProps(title string, opts WriteOptions) *corePropertiesOut {
	props := &corePropertiesOut{
		XmlnsCP:  nsCoreProps,
		XmlnsDC:  nsDC,
		XmlnsDCT: nsDCTerms,
		XmlnsXSI: nsXSI,
		Title:    title,
		Creator:  opts.Creator,
	}
	if !opts.Created.IsZero() {
		props.Created = &w3cDate{
			Type:  "dcterms:W3CDTF",
			Value: opts.Created.UTC().Format(time.RFC3339),
		}
	}
	return props
}

// SanitizeSheetName makes name acceptable as a worksheet name: the
// characters []:*?/\ are replaced, surrounding apostrophes removed, and the
// result limited to 31 characters. An empty result becomes "Sheet1".
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")

	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = string([]rune(name)[:maxSheetNameLen])
	}
	if strings.TrimSpace(name) == "" {
		return "Sheet1"
	}
	return name
}
