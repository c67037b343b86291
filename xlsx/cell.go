package xlsx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/tabulate/model"
)

// Sheet limits of the OOXML format.
const (
	MaxColumns = 16384
	MaxRows    = 1048576
)

// ErrInvalidRef is returned for a malformed A1-style cell reference.
var ErrInvalidRef = errors.New("invalid cell reference")

// Cell is one worksheet cell after type classification.
type Cell struct {
	Value      string     // Cell text; the serial for dates
	RawValue   string     // <v> content as stored
	Kind       model.Kind // Classified kind
	Row        int        // 0-indexed
	Col        int        // 0-indexed
	StyleIndex int        // Index into cellXfs
	Formula    string
	IsError    bool // Error literal such as #DIV/0!
}

// IsEmpty reports whether the cell holds no value. A nil cell is empty.
func (c *Cell) IsEmpty() bool {
	return c == nil || c.Kind == model.KindEmpty || c.Value == ""
}

// Sheet is a worksheet expanded to a grid of rows. Each row runs up to its
// last cell with a value, so rows can differ in length and a blank row has
// no cells.
type Sheet struct {
	Name   string
	Index  int
	Rows   [][]Cell
	MaxRow int // 0-indexed
	MaxCol int // 0-indexed, -1 for a sheet without cells
}

// Cell returns the cell at row and col, or nil outside the grid.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return nil
	}
	return &s.Rows[row][col]
}

// CellByRef returns the cell at an A1-style reference, or nil.
func (s *Sheet) CellByRef(ref string) *Cell {
	r, err := ParseRef(ref)
	if err != nil {
		return nil
	}
	return s.Cell(r.Row, r.Col)
}

// RowCount returns the number of rows in the grid.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// ColCount returns the number of columns in the grid.
func (s *Sheet) ColCount() int {
	if len(s.Rows) == 0 {
		return 0
	}
	return s.MaxCol + 1
}

// Table converts the sheet into a model.Table titled with the sheet name.
// Rows keep their sheet positions, so a blank row in the sheet becomes an
// empty row.
func (s *Sheet) Table() *model.Table {
	t := model.NewTable(s.Name)
	t.Rows = make([][]model.Cell, len(s.Rows))
	for i, row := range s.Rows {
		cells := make([]model.Cell, len(row))
		for j, c := range row {
			cells[j] = model.Cell{Kind: c.Kind, Text: c.Value}
		}
		t.Rows[i] = cells
	}
	return t
}

// Ref is a 0-indexed cell position.
type Ref struct {
	Col, Row int
}

// ParseRef parses an A1-style reference such as "C7" or "$AA$100".
// Column letters are case-insensitive.
func ParseRef(s string) (Ref, error) {
	s = strings.ReplaceAll(s, "$", "")
	split := strings.IndexFunc(s, func(r rune) bool { return r < 'A' || r > 'z' || (r > 'Z' && r < 'a') })
	if split <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}

	col := ColumnIndex(s[:split])
	if col < 0 || col >= MaxColumns {
		return Ref{}, fmt.Errorf("%w: column out of range in %q", ErrInvalidRef, s)
	}

	row, err := strconv.Atoi(s[split:])
	if err != nil || row < 1 || row > MaxRows || s[split] == '+' {
		return Ref{}, fmt.Errorf("%w: bad row in %q", ErrInvalidRef, s)
	}

	return Ref{Col: col, Row: row - 1}, nil
}

// String returns the A1-style form of r.
func (r Ref) String() string {
	return ColumnName(r.Col) + strconv.Itoa(r.Row+1)
}

// Range is a rectangular block of cells, both corners inclusive.
type Range struct {
	From, To Ref
}

// String returns the "A1:C3" form of the range.
func (r Range) String() string {
	return r.From.String() + ":" + r.To.String()
}

// ColumnIndex converts column letters to a 0-indexed column number: A is 0,
// Z is 25 and AA is 26. It returns -1 for anything but letters.
func ColumnIndex(name string) int {
	if name == "" {
		return -1
	}
	n := 0
	for _, c := range strings.ToUpper(name) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A'+1)
		if n > MaxColumns {
			return -1
		}
	}
	return n - 1
}

// ColumnName converts a 0-indexed column number to its letters.
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}
	var buf [14]byte
	i := len(buf)
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}
