package tabulate

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabulate/format"
	"github.com/tsawler/tabulate/model"
	"github.com/tsawler/tabulate/xlsx"
)

type Product struct {
	Name    string
	Qty     int
	Price   float64 `tabulate:"Unit Price"`
	InStock bool
	Added   time.Time
	Note    *string
	secret  string
}

func sampleProducts() []Product {
	note := "fragile"
	return []Product{
		{Name: "Pen", Qty: 10, Price: 1.25, InStock: true, Added: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), Note: &note},
		{Name: "Paper", Qty: 500, Price: 0.01, InStock: false, Added: time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)},
		{Name: "Stapler", Qty: -3, Price: 12, InStock: true, Added: time.Date(2010, 6, 15, 8, 30, 15, 0, time.UTC)},
	}
}

// tableXLSX writes rows as an XLSX document, all cells as strings.
func tableXLSX(t *testing.T, sheet string, rows ...[]string) []byte {
	t.Helper()
	tbl := model.NewTable(sheet)
	for _, row := range rows {
		cells := make([]model.Cell, len(row))
		for i, text := range row {
			cells[i] = model.StringCell(text)
		}
		tbl.AppendRow(cells...)
	}
	var buf bytes.Buffer
	require.NoError(t, xlsx.Write(&buf, tbl, xlsx.WriteOptions{}))
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	items := sampleProducts()

	data, err := Export(items).Bytes()
	require.NoError(t, err)

	got, err := Import[Product]().FromBytes(data)
	require.NoError(t, err)
	require.Len(t, got, len(items))

	for i := range items {
		assert.Equal(t, items[i].Name, got[i].Name)
		assert.Equal(t, items[i].Qty, got[i].Qty)
		assert.Equal(t, items[i].Price, got[i].Price)
		assert.Equal(t, items[i].InStock, got[i].InStock)
		assert.True(t, items[i].Added.Equal(got[i].Added), "row %d: %v != %v", i, items[i].Added, got[i].Added)
		assert.Equal(t, items[i].Note, got[i].Note)
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	data, err := Export([]Product{}).Bytes()
	require.NoError(t, err)

	got, err := FromBytes[Product](data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRoundTrip_UnsetTime(t *testing.T) {
	items := []Product{{Name: "Blank"}}

	data, err := Export(items).Bytes()
	require.NoError(t, err)

	got, err := Import[Product]().FromBytes(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Added.IsZero(), "got %v", got[0].Added)
	assert.Equal(t, items[0], got[0])
}

func TestRoundTrip_FarDates(t *testing.T) {
	type Event struct {
		Name string
		At   time.Time
	}
	items := []Event{
		{"founding", time.Date(1500, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"future", time.Date(2300, 1, 1, 6, 0, 0, 0, time.UTC)},
		{"last", time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	data, err := Export(items).Bytes()
	require.NoError(t, err)

	got, err := FromBytes[Event](data)
	require.NoError(t, err)
	require.Len(t, got, len(items))
	for i := range items {
		assert.True(t, items[i].At.Equal(got[i].At), "%s: got %v", items[i].Name, got[i].At)
	}
}

func TestRoundTrip_LargeUnsigned(t *testing.T) {
	type Counter struct {
		Name  string
		Total uint64
	}
	items := []Counter{{"max", math.MaxUint64}, {"small", 7}}

	data, err := Export(items).Bytes()
	require.NoError(t, err)

	got, err := FromBytes[Counter](data)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestRoundTrip_PointerRecords(t *testing.T) {
	items := []*Product{{Name: "Ink", Qty: 2}, {Name: "Nib", Qty: 7}}

	data, err := Export(items).Bytes()
	require.NoError(t, err)

	got, err := Import[*Product]().FromBytes(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ink", got[0].Name)
	assert.Equal(t, 7, got[1].Qty)
}

func TestExporter_Table(t *testing.T) {
	items := sampleProducts()

	tbl, err := Export(items).Table()
	require.NoError(t, err)

	assert.Equal(t, "Products", tbl.Title)
	assert.Equal(t, len(items)+1, tbl.RowCount())
	assert.Equal(t, []string{"Name", "Qty", "Unit Price", "InStock", "Added", "Note"}, tbl.Header())
	for _, row := range tbl.Rows {
		assert.Len(t, row, 6)
	}

	assert.Equal(t, model.KindInteger, tbl.Cell(1, 1).Kind)
	assert.Equal(t, "10", tbl.Cell(1, 1).Text)
	assert.Equal(t, "1", tbl.Cell(1, 3).Text)
	assert.Equal(t, "45292.5", tbl.Cell(1, 4).Text)
	assert.Equal(t, "", tbl.Cell(2, 5).Text)
}

func TestExporter_Title(t *testing.T) {
	tbl, err := Export(sampleProducts()).Title("Stock").Table()
	require.NoError(t, err)
	assert.Equal(t, "Stock", tbl.Title)
}

func TestExporter_NotAStruct(t *testing.T) {
	_, err := Export([]int{1, 2}).Bytes()
	assert.Error(t, err)
}

func TestExporter_Formats(t *testing.T) {
	items := sampleProducts()

	tests := []struct {
		format format.Format
		check  func(t *testing.T, data []byte)
	}{
		{format.XLSX, func(t *testing.T, data []byte) {
			f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
			require.NoError(t, err)
			assert.Equal(t, format.XLSX, f)
		}},
		{format.DOCX, func(t *testing.T, data []byte) {
			f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
			require.NoError(t, err)
			assert.Equal(t, format.DOCX, f)
		}},
		{format.PDF, func(t *testing.T, data []byte) {
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		}},
		{format.HTML, func(t *testing.T, data []byte) {
			html := string(data)
			assert.Contains(t, html, "<h1>Products</h1>")
			assert.Contains(t, html, "Stapler")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := ToBytes(items, tt.format)
			require.NoError(t, err)
			require.NotEmpty(t, data)
			tt.check(t, data)
		})
	}
}

func TestExporter_UnknownFormat(t *testing.T) {
	_, err := Export(sampleProducts()).Format(format.Unknown).Bytes()
	require.NoError(t, err, "unset format falls back to XLSX")

	_, err = Export(sampleProducts()).Format(format.Format(99)).Bytes()
	assert.ErrorIs(t, err, model.ErrUnknownFormat)
}

func TestExporter_Immutable(t *testing.T) {
	base := Export(sampleProducts())
	_ = base.Format(format.PDF).Title("Other")

	data, err := base.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "base exporter still produces XLSX")

	tbl, err := base.Table()
	require.NoError(t, err)
	assert.Equal(t, "Products", tbl.Title)
}

func TestExporter_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := Export(sampleProducts()).Format(format.HTML).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
}

func TestExporter_Stream(t *testing.T) {
	r, err := Export(sampleProducts()).Stream()
	require.NoError(t, err)

	got, err := Import[Product]().FromStream(r)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSaveToFile(t *testing.T) {
	items := sampleProducts()

	for _, f := range format.All {
		t.Run(f.String(), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "products"+f.Extension())

			require.NoError(t, SaveToFile(items, path))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1, "only the target file remains")
			assert.Equal(t, "products"+f.Extension(), entries[0].Name())

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestSaveToFile_ExplicitFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.bin")
	require.NoError(t, Export(sampleProducts()).Format(format.PDF).SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExport_PDFFont(t *testing.T) {
	_, err := Export(sampleProducts()).Format(format.PDF).Font([]byte("not a font file")).Bytes()
	assert.Error(t, err)

	font, err := os.ReadFile("/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf")
	if err != nil {
		t.Skip("DejaVuSans.ttf not installed")
	}
	data, err := Export(sampleProducts()).Format(format.PDF).Font(font).Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), "/FontFile2")
}

func TestSaveToFile_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	err := SaveToFile(sampleProducts(), filepath.Join(dir, "products.txt"))
	assert.ErrorIs(t, err, model.ErrUnknownFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveToFile_FailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "numbers.xlsx")

	err := SaveToFile([]int{1, 2, 3}, path)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveToFile_ThenFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, SaveToFile(sampleProducts(), path))

	got, err := FromFile[Product](path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Paper", got[1].Name)

	// The file was closed, so it can be removed.
	require.NoError(t, os.Remove(path))
}

func TestImport_HeaderMapping(t *testing.T) {
	data := tableXLSX(t, "Sheet1",
		[]string{"qty", "Extra", "NAME", "unit price"},
		[]string{"4", "ignored", "Clip", "0.5"},
		[]string{"", "x", "Tape", ""},
	)

	got, err := Import[Product]().FromBytes(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Product{Name: "Clip", Qty: 4, Price: 0.5}, got[0])
	assert.Equal(t, Product{Name: "Tape"}, got[1])
}

func TestImport_SkipHeaderFalse(t *testing.T) {
	type Pair struct {
		Key   string
		Value string
	}
	data := tableXLSX(t, "Pairs",
		[]string{"Key", "Value"},
		[]string{"a", "1"},
	)

	got, err := Import[Pair]().SkipHeader(false).FromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Key: "Key", Value: "Value"}, {Key: "a", Value: "1"}}, got)
}

func TestImport_CoercionError(t *testing.T) {
	data := tableXLSX(t, "Sheet1",
		[]string{"Name", "Qty"},
		[]string{"Pen", "3"},
		[]string{"Ink", "abc"},
	)

	got, err := Import[Product]().FromBytes(data)
	assert.Nil(t, got)

	var ce *model.CoercionError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, 2, ce.Row)
	assert.Equal(t, 1, ce.Column)
	assert.Equal(t, "Qty", ce.Field)
	assert.Equal(t, "abc", ce.Text)
}

func TestImport_BooleanText(t *testing.T) {
	data := tableXLSX(t, "Sheet1",
		[]string{"Name", "InStock"},
		[]string{"a", "TRUE"},
		[]string{"b", "yes"},
		[]string{"c", "1"},
	)

	got, err := Import[Product]().FromBytes(data)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].InStock)
	assert.False(t, got[1].InStock)
	assert.True(t, got[2].InStock)
}

func TestImport_Unsupported(t *testing.T) {
	for _, f := range []format.Format{format.DOCX, format.PDF, format.HTML} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := ToBytes(sampleProducts(), f)
			require.NoError(t, err)

			_, err = FromBytes[Product](data)
			assert.ErrorIs(t, err, model.ErrImportUnsupported)
		})
	}
}

func TestImport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("just some text")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromBytes[Product](tt.data)
			var me *model.MalformedDocumentError
			assert.True(t, errors.As(err, &me), "got %v", err)
		})
	}
}

func TestImport_FileNotFound(t *testing.T) {
	_, err := FromFile[Product](filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_Sheet(t *testing.T) {
	data, err := Export(sampleProducts()).Bytes()
	require.NoError(t, err)

	got, err := Import[Product]().Sheet("Products").FromBytes(data)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = Import[Product]().Sheet("Nope").FromBytes(data)
	var me *model.MalformedDocumentError
	assert.True(t, errors.As(err, &me))
}

func TestImport_FromTable(t *testing.T) {
	tbl, err := Export(sampleProducts()).Table()
	require.NoError(t, err)

	got, err := Import[Product]().FromTable(tbl)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = Import[Product]().FromTable(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImport_LogsIgnoredColumns(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	data := tableXLSX(t, "Sheet1",
		[]string{"Name", "Colour"},
		[]string{"Pen", "blue"},
	)

	_, err := Import[Product]().Logger(logger).FromBytes(data)
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "ignoring unmatched columns")
	assert.Contains(t, out, "Colour")
}

func TestExporter_Logger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Export(sampleProducts()).Logger(logger).Format(format.PDF).Bytes()
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "built table")
	assert.True(t, strings.Contains(out, "page=A4") || strings.Contains(out, "page=A3"))
}

func TestMust(t *testing.T) {
	assert.Equal(t, 3, Must(3, nil))
	assert.Panics(t, func() {
		Must(FromBytes[Product]([]byte("bad")))
	})
}
