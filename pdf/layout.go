// Package pdf renders tables as paginated PDF documents and estimates the
// column widths they need.
package pdf

import (
	"unicode/utf8"

	"github.com/tsawler/tabulate/model"
)

const (
	// Layout units per character of fixed column width.
	widthPerChar = 10
	// Layout units per character counted toward the total content width.
	totalPerChar = 8
	// Content widths up to this total fit the compact page.
	compactLimit = 720
)

// Layout is the column sizing chosen for a table. A zero width marks a
// flexible column that shares the space left by the fixed ones.
type Layout struct {
	Compact bool
	Widths  []float64
}

// Flexible reports whether column i has no fixed width.
func (l Layout) Flexible(i int) bool {
	return i >= len(l.Widths) || l.Widths[i] <= 0
}

// EstimateColumnWidths sizes the columns of t from the longest rendered text
// in each data column. kinds holds the declared kind of each column; string
// columns are always flexible. The table is compact when the estimated
// content width fits within the compact limit. A table without data rows
// gets flexible columns only.
func EstimateColumnWidths(t *model.Table, kinds []model.Kind) Layout {
	cols := len(kinds)
	if n := t.ColCount(); n > cols {
		cols = n
	}

	maxLen := make([]int, cols)
	for _, row := range t.DataRows() {
		for c, cell := range row {
			if n := utf8.RuneCountInString(cell.PlainText()); n > maxLen[c] {
				maxLen[c] = n
			}
		}
	}

	layout := Layout{Widths: make([]float64, cols)}
	total := 0
	hasItems := len(t.DataRows()) > 0
	for c, n := range maxLen {
		if c < len(kinds) && kinds[c] == model.KindString {
			n = 0
		}
		total += n * totalPerChar
		if hasItems {
			layout.Widths[c] = float64(n * widthPerChar)
		}
	}
	layout.Compact = total <= compactLimit
	return layout
}

// resolveWidths turns a layout into concrete column widths for the given
// available width. Flexible columns split what the fixed columns leave.
// When the fixed columns alone overflow, every column becomes flexible.
func resolveWidths(l Layout, cols int, available float64) []float64 {
	widths := make([]float64, cols)
	if cols == 0 {
		return widths
	}

	fixed := 0.0
	flex := 0
	for i := 0; i < cols; i++ {
		if l.Flexible(i) {
			flex++
			continue
		}
		fixed += l.Widths[i]
	}

	if fixed > available || (flex > 0 && fixed >= available) {
		for i := range widths {
			widths[i] = available / float64(cols)
		}
		return widths
	}

	share := 0.0
	if flex > 0 {
		share = (available - fixed) / float64(flex)
	}
	for i := range widths {
		if l.Flexible(i) {
			widths[i] = share
		} else {
			widths[i] = l.Widths[i]
		}
	}
	return widths
}
