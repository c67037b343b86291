package model

import "strings"

// Cell is a single tagged value in a Table.
type Cell struct {
	Kind Kind   // How Text must be interpreted
	Text string // Textual form (a day-count serial for KindDate)

	// Display is the human-readable form used by plain-text formats. When
	// empty, Text is used.
	Display string
}

// StringCell returns a cell tagged as string.
func StringCell(text string) Cell {
	return Cell{Kind: KindString, Text: text}
}

// IsEmpty returns true if the cell has no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || strings.TrimSpace(c.Text) == ""
}

// PlainText returns the text plain-text writers should render.
func (c Cell) PlainText() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Text
}

// Table represents an ordered sequence of rows. Row 0 is the header.
type Table struct {
	Title string
	Rows  [][]Cell
}

// NewTable creates an empty table with the given title.
func NewTable(title string) *Table {
	return &Table{Title: title}
}

// AppendRow appends a row of cells.
func (t *Table) AppendRow(cells ...Cell) {
	t.Rows = append(t.Rows, cells)
}

// RowCount returns the number of rows, header included.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the widest row.
func (t *Table) ColCount() int {
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Cell returns the cell at the given row and column (0-indexed).
// Returns nil if the cell doesn't exist.
func (t *Table) Cell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return &t.Rows[row][col]
}

// Header returns the text of row 0, or nil for an empty table.
func (t *Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	header := make([]string, len(t.Rows[0]))
	for i, c := range t.Rows[0] {
		header[i] = c.Text
	}
	return header
}

// DataRows returns every row after the header.
func (t *Table) DataRows() [][]Cell {
	if len(t.Rows) <= 1 {
		return nil
	}
	return t.Rows[1:]
}

// Texts returns the Text of every cell, row by row.
func (t *Table) Texts() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.Text
		}
	}
	return out
}
