package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/tabulate/model"
)

// TableInfo describes the layout of a body table.
type TableInfo struct {
	Fixed      bool // Fixed layout rather than autofit
	Bordered   bool // At least one table border is visible
	HeaderRows int  // Leading rows marked to repeat on each page
	GridCols   int  // Columns declared by the table grid
}

func tableInfo(tbl tableXML) TableInfo {
	info := TableInfo{
		Fixed:    tbl.Properties.Layout.Type == "fixed",
		Bordered: hasBorders(tbl.Properties.Borders),
		GridCols: len(tbl.Grid.Cols),
	}
	for _, row := range tbl.Rows {
		if !isHeaderRow(row) {
			break
		}
		info.HeaderRows++
	}
	return info
}

// parseTable converts a table element into a model.Table. A cell spanning
// several grid columns is followed by empty cells so every row stays aligned
// with the grid.
func parseTable(tbl tableXML) *model.Table {
	t := model.NewTable("")

	colCount := len(tbl.Grid.Cols)
	for _, row := range tbl.Rows {
		if n := rowWidth(row); n > colCount {
			colCount = n
		}
	}

	for _, row := range tbl.Rows {
		cells := make([]model.Cell, 0, colCount)
		for _, cell := range row.Cells {
			cells = append(cells, model.StringCell(cellText(cell)))
			for i := 1; i < cellSpan(cell); i++ {
				cells = append(cells, model.Cell{})
			}
		}
		for len(cells) < colCount {
			cells = append(cells, model.Cell{})
		}
		t.AppendRow(cells...)
	}

	return t
}

// isHeaderRow reports whether row repeats as a header on each page.
func isHeaderRow(row tableRowXML) bool {
	return row.Properties.Header.XMLName.Local != "" && row.Properties.Header.Val != "false"
}

func rowWidth(row tableRowXML) int {
	n := 0
	for _, cell := range row.Cells {
		n += cellSpan(cell)
	}
	return n
}

func cellSpan(cell tableCellXML) int {
	if cell.Properties.GridSpan.Val != "" {
		if span, err := strconv.Atoi(cell.Properties.GridSpan.Val); err == nil && span > 0 {
			return span
		}
	}
	return 1
}

// cellText joins the paragraphs of a cell with newlines.
func cellText(cell tableCellXML) string {
	var textParts []string
	for _, para := range cell.Paragraphs {
		if p := processParagraph(para); p.Text != "" {
			textParts = append(textParts, p.Text)
		}
	}
	return strings.Join(textParts, "\n")
}

// hasBorders checks if the table has visible borders.
func hasBorders(borders tableBordersXML) bool {
	visible := func(b borderXML) bool { return b.Val != "" && b.Val != "nil" && b.Val != "none" }
	return visible(borders.Top) || visible(borders.Bottom) ||
		visible(borders.Left) || visible(borders.Right) ||
		visible(borders.InsideH) || visible(borders.InsideV)
}
