package xlsx

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tsawler/tabulate/coerce"
	"github.com/tsawler/tabulate/model"
)

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`

const testWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets>
</workbook>`

const testWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`

// buildTestXLSX creates a single-sheet XLSX package in memory. Extra parts
// (shared strings, styles) are added when non-empty.
func buildTestXLSX(t *testing.T, sheet string, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeZipFile(t, zw, "[Content_Types].xml", testContentTypes)
	writeZipFile(t, zw, "xl/workbook.xml", testWorkbook)
	writeZipFile(t, zw, "xl/_rels/workbook.xml.rels", testWorkbookRels)
	if sheet != "" {
		writeZipFile(t, zw, "xl/worksheets/sheet1.xml", sheet)
	}
	for name, content := range parts {
		writeZipFile(t, zw, name, content)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func writeZipFile(t *testing.T, zw *zip.Writer, name, content string) {
	t.Helper()
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Failed to create %s in zip: %v", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func sharedStringsPart(items ...string) string {
	s := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`
	for _, item := range items {
		s += "<si><t>" + item + "</t></si>"
	}
	return s + "</sst>"
}

const minimalSheet = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
  <row r="1">
    <c r="A1" t="s"><v>0</v></c>
    <c r="B1" t="s"><v>1</v></c>
  </row>
  <row r="2">
    <c r="A2" t="s"><v>2</v></c>
    <c r="B2"><v>3</v></c>
  </row>
</sheetData>
</worksheet>`

func TestOpenBytes(t *testing.T) {
	data := buildTestXLSX(t, minimalSheet, map[string]string{
		"xl/sharedStrings.xml": sharedStringsPart("Name", "Qty", "Pen"),
	})

	r, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	defer r.Close()

	if r.SheetCount() != 1 {
		t.Fatalf("SheetCount() = %d, want 1", r.SheetCount())
	}
	if names := r.SheetNames(); names[0] != "Data" {
		t.Errorf("SheetNames() = %v, want [Data]", names)
	}

	table, err := r.FirstTable()
	if err != nil {
		t.Fatalf("FirstTable() failed: %v", err)
	}
	want := [][]string{{"Name", "Qty"}, {"Pen", "3"}}
	got := table.Texts()
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("cell (%d,%d) = %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestOpen_File(t *testing.T) {
	data := buildTestXLSX(t, minimalSheet, nil)
	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	// Second close should be safe (no-op)
	if err := r.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.xlsx")
	if err == nil {
		t.Error("Open() expected error for nonexistent file")
	}
}

func TestOpenBytes_Malformed(t *testing.T) {
	var missingWorkbook bytes.Buffer
	zw := zip.NewWriter(&missingWorkbook)
	writeZipFile(t, zw, "[Content_Types].xml", "<Types/>")
	zw.Close()

	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("not a zip file")},
		{"missing workbook", missingWorkbook.Bytes()},
		{"no worksheets", buildTestXLSX(t, "", nil)},
		{"unparseable worksheet", buildTestXLSX(t, "<worksheet><sheetData><row>", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenBytes(tt.data)
			var me *model.MalformedDocumentError
			if !errors.As(err, &me) {
				t.Errorf("OpenBytes() error = %v, want *model.MalformedDocumentError", err)
			}
		})
	}
}

func TestCellKinds(t *testing.T) {
	sheet := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
  <row r="1">
    <c r="A1" t="s"><v>0</v></c>
    <c r="B1"><v>42</v></c>
    <c r="C1"><v>4.25</v></c>
    <c r="D1" t="b"><v>1</v></c>
    <c r="E1" t="b"><v>0</v></c>
    <c r="F1" t="e"><v>#REF!</v></c>
    <c r="G1" t="str"><v>formula result</v></c>
    <c r="H1" t="inlineStr"><is><t>inline text</t></is></c>
    <c r="I1" s="1"><v>45292.5</v></c>
    <c r="J1" s="2"><v>45292</v></c>
    <c r="K1" s="3"><v>12</v></c>
  </row>
</sheetData>
</worksheet>`

	styles := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<numFmts count="2">
  <numFmt numFmtId="164" formatCode="yyyy-mm-dd hh:mm"/>
  <numFmt numFmtId="165" formatCode="&quot;day&quot;0"/>
</numFmts>
<cellXfs count="4">
  <xf numFmtId="0"/>
  <xf numFmtId="164"/>
  <xf numFmtId="14"/>
  <xf numFmtId="165"/>
</cellXfs>
</styleSheet>`

	data := buildTestXLSX(t, sheet, map[string]string{
		"xl/sharedStrings.xml": sharedStringsPart("text"),
		"xl/styles.xml":        styles,
	})
	r, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	s, _ := r.Sheet(0)

	tests := []struct {
		ref      string
		wantKind model.Kind
		wantVal  string
	}{
		{"A1", model.KindString, "text"},
		{"B1", model.KindInteger, "42"},
		{"C1", model.KindFloat, "4.25"},
		{"D1", model.KindBoolean, "TRUE"},
		{"E1", model.KindBoolean, "FALSE"},
		{"F1", model.KindString, "#REF!"},
		{"G1", model.KindString, "formula result"},
		{"H1", model.KindString, "inline text"},
		{"I1", model.KindDate, "45292.5"},
		{"J1", model.KindDate, "45292"},
		{"K1", model.KindInteger, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			cell := s.CellByRef(tt.ref)
			if cell == nil {
				t.Fatalf("Cell %s not found", tt.ref)
			}
			if cell.Kind != tt.wantKind {
				t.Errorf("Cell %s Kind = %v, want %v", tt.ref, cell.Kind, tt.wantKind)
			}
			if cell.Value != tt.wantVal {
				t.Errorf("Cell %s Value = %q, want %q", tt.ref, cell.Value, tt.wantVal)
			}
		})
	}

	if !s.CellByRef("F1").IsError {
		t.Error("F1 should be flagged as an error value")
	}
}

func TestSparseCells(t *testing.T) {
	sheet := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
  <row r="1"><c r="A1"><v>1</v></c><c r="C1"><v>3</v></c></row>
  <row r="3"><c><v>7</v></c><c><v>8</v></c></row>
</sheetData>
</worksheet>`

	r, err := OpenBytes(buildTestXLSX(t, sheet, nil))
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	s, _ := r.Sheet(0)

	if s.RowCount() != 3 || s.ColCount() != 3 {
		t.Fatalf("sheet is %dx%d, want 3x3", s.RowCount(), s.ColCount())
	}
	if !s.CellByRef("B1").IsEmpty() {
		t.Error("B1 should be empty")
	}
	if got := s.CellByRef("B3").Value; got != "8" {
		t.Errorf("B3 = %q, want %q", got, "8")
	}
	if len(s.Rows[1]) != 0 {
		t.Errorf("row 2 has %d cells, want none", len(s.Rows[1]))
	}
	if len(s.Rows[2]) != 2 {
		t.Errorf("row 3 has %d cells, want 2", len(s.Rows[2]))
	}
}

func TestStyleOnlyCellsDoNotExtendSheet(t *testing.T) {
	sheet := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
  <row r="1"><c r="A1"><v>1</v></c><c r="XFD1" s="0"/></row>
  <row r="2"><c r="B2"><v>2</v></c></row>
  <row r="1048576"><c r="XFD1048576" s="0"/></row>
</sheetData>
</worksheet>`

	r, err := OpenBytes(buildTestXLSX(t, sheet, nil))
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	s, _ := r.Sheet(0)

	if s.RowCount() != 2 || s.ColCount() != 2 {
		t.Fatalf("sheet is %dx%d, want 2x2", s.RowCount(), s.ColCount())
	}
	if len(s.Rows[0]) != 1 {
		t.Errorf("row 1 has %d cells, want 1", len(s.Rows[0]))
	}
	if got := s.CellByRef("B2").Value; got != "2" {
		t.Errorf("B2 = %q, want %q", got, "2")
	}
	if s.CellByRef("XFD1") != nil {
		t.Error("style-only cell should not be stored")
	}

	tbl := r.sheets[0].Table()
	if tbl.ColCount() != 2 {
		t.Errorf("table has %d columns, want 2", tbl.ColCount())
	}
}

func TestISODateCells(t *testing.T) {
	sheet := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
  <row r="1">
    <c r="A1" t="d"><v>2024-01-01T12:00:00</v></c>
    <c r="B1" t="d"><v>2024-01-01</v></c>
    <c r="C1" t="d"><v>2024-01-01T12:00:00.000Z</v></c>
    <c r="D1" t="d"><v>1899-12-30T06:00:00</v></c>
    <c r="E1" t="d"><v>45292.5</v></c>
    <c r="F1" t="d"><v>not a date</v></c>
    <c r="G1" t="d"><v>1500-06-01</v></c>
  </row>
</sheetData>
</worksheet>`

	r, err := OpenBytes(buildTestXLSX(t, sheet, nil))
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	s, _ := r.Sheet(0)

	tests := []struct {
		ref      string
		wantKind model.Kind
		wantVal  string
	}{
		{"A1", model.KindDate, "45292.5"},
		{"B1", model.KindDate, "45292"},
		{"C1", model.KindDate, "45292.5"},
		{"D1", model.KindDate, "0.25"},
		{"E1", model.KindDate, "45292.5"},
		{"F1", model.KindString, "not a date"},
		{"G1", model.KindDate, "-145944"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			cell := s.CellByRef(tt.ref)
			if cell == nil {
				t.Fatalf("Cell %s not found", tt.ref)
			}
			if cell.Kind != tt.wantKind || cell.Value != tt.wantVal {
				t.Errorf("Cell %s = (%v, %q), want (%v, %q)", tt.ref, cell.Kind, cell.Value, tt.wantKind, tt.wantVal)
			}
		})
	}

	v, err := coerce.Decode(s.CellByRef("A1").Value, model.KindDate)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC); !v.Time().Equal(want) {
		t.Errorf("A1 decodes to %v, want %v", v.Time(), want)
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"h:mm AM/PM", true},
		{"0.00", false},
		{"#,##0", false},
		{`"Qty "0`, false},
		{`[Red]0.0`, false},
		{`\d0`, false},
		{"[$-409]d-mmm", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := isDateFormatCode(tt.code); got != tt.want {
				t.Errorf("isDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
