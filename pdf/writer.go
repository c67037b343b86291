package pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/tsawler/tabulate/model"
)

const (
	marginH = 15.0
	marginV = 20.0

	headerHeight = 30.0
	footerHeight = 20.0

	titleSize      = 14.0
	headSize       = 11.0
	bodySize       = 10.0
	footerSize     = 8.0
	headPadding    = 5.0
	bodyPadding    = 2.0
	lineHeightMult = 1.25

	fontFamily     = "Helvetica"
	utf8Family     = "TableFont"
	ellipsis       = "..."
	maxHeaderLines = 3
)

var setupOnce sync.Once

// setup configures process-wide engine defaults.
func setup() {
	setupOnce.Do(func() {
		fpdf.SetDefaultCatalogSort(true)
	})
}

// WriteOptions controls document-level properties of a written document.
type WriteOptions struct {
	Creator string    // Written to the document information dictionary
	Created time.Time // Creation date; the current time when zero

	// Font is TrueType data used for all text. Without it the core
	// Helvetica font is used, which only covers the cp1252 character set;
	// other characters print as '?'.
	Font []byte
	// BoldFont is used for the header row. It defaults to Font.
	BoldFont []byte
}

// PageSize returns the page size name used for a layout: A4 when compact,
// A3 otherwise.
func PageSize(l Layout) string {
	if l.Compact {
		return "A4"
	}
	return "A3"
}

// Write renders t as a PDF document. Every page carries the table title as
// a header and a "{current} / {total}" page counter as a footer. The table
// is bordered, cell text wraps within its column, and the bold header row is
// repeated after each page break.
func Write(w io.Writer, t *model.Table, layout Layout, opts WriteOptions) error {
	setup()

	pdf := fpdf.New("P", "pt", PageSize(layout), "")
	pdf.SetMargins(marginH, marginV, marginH)
	pdf.SetAutoPageBreak(false, marginV)
	pdf.SetTitle(t.Title, true)
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	if !opts.Created.IsZero() {
		pdf.SetCreationDate(opts.Created)
	}
	pdf.AliasNbPages("{nb}")

	family := fontFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if len(opts.Font) > 0 {
		bold := opts.BoldFont
		if len(bold) == 0 {
			bold = opts.Font
		}
		pdf.AddUTF8FontFromBytes(utf8Family, "", opts.Font)
		pdf.AddUTF8FontFromBytes(utf8Family, "B", bold)
		// Fonts that fail to parse are only reported on first use.
		pdf.SetFont(utf8Family, "", bodySize)
		pdf.SetFont(utf8Family, "B", headSize)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("loading font: %w", err)
		}
		family = utf8Family
		tr = func(s string) string { return s }
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetY(marginV)
		pdf.SetFont(family, "", titleSize)
		pdf.CellFormat(0, headerHeight, tr(t.Title), "", 1, "CM", false, 0, "")
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-(marginV + footerHeight))
		pdf.SetFont(family, "", footerSize)
		pdf.CellFormat(0, footerHeight, strconv.Itoa(pdf.PageNo())+" / {nb}", "", 0, "CM", false, 0, "")
	})

	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	available := pageW - 2*marginH
	widths := resolveWidths(layout, t.ColCount(), available)
	tableW := 0.0
	for _, cw := range widths {
		tableW += cw
	}
	top := marginV + headerHeight
	bottom := pageH - marginV - footerHeight

	r := &tableRenderer{
		pdf:      pdf,
		tr:       tr,
		family:   family,
		widths:   widths,
		left:     marginH + (available-tableW)/2,
		maxLines: maxHeaderLines,
	}
	if len(t.Rows) > 0 {
		header := r.layout(t.Rows[0], true)
		r.maxLines = max(1, int((bottom-top-header.height-2*bodyPadding)/(bodySize*lineHeightMult)))

		r.draw(header)
		for _, cells := range t.DataRows() {
			row := r.layout(cells, false)
			if pdf.GetY()+row.height > bottom {
				pdf.AddPage()
				r.draw(header)
			}
			r.draw(row)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	return nil
}

// rowStyle returns the font size, cell padding, font style and border width
// of a header or body row.
func rowStyle(head bool) (size, padding float64, style string, lineWidth float64) {
	if head {
		return headSize, headPadding, "B", 1.0
	}
	return bodySize, bodyPadding, "", 0.5
}

// tableRenderer draws table rows at fixed column positions.
type tableRenderer struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	family   string
	widths   []float64
	left     float64
	maxLines int // Lines per cell; 0 means unlimited
}

// rowLayout is a row broken into the lines of each cell.
type rowLayout struct {
	lines  [][]string
	height float64
	head   bool
}

// layout wraps every cell of a row to its column width. A cell with more
// than maxLines lines is cut there and ends with an ellipsis.
func (r *tableRenderer) layout(cells []model.Cell, head bool) rowLayout {
	size, padding, style, _ := rowStyle(head)
	r.pdf.SetFont(r.family, style, size)

	row := rowLayout{lines: make([][]string, len(r.widths)), head: head}
	n := 1
	for c, cw := range r.widths {
		if c >= len(cells) {
			continue
		}
		width := cw - 2*padding
		lines := r.wrap(cells[c].PlainText(), width)
		if r.maxLines > 0 && len(lines) > r.maxLines {
			lines = lines[:r.maxLines]
			lines[len(lines)-1] = r.ellipsize(lines[len(lines)-1], width)
		}
		row.lines[c] = lines
		n = max(n, len(lines))
	}
	row.height = float64(n)*size*lineHeightMult + 2*padding
	return row
}

func (r *tableRenderer) draw(row rowLayout) {
	size, padding, style, lineWidth := rowStyle(row.head)
	lh := size * lineHeightMult

	r.pdf.SetFont(r.family, style, size)
	r.pdf.SetLineWidth(lineWidth)
	r.pdf.SetCellMargin(padding)

	x, y := r.left, r.pdf.GetY()
	for c, cw := range r.widths {
		r.pdf.Rect(x, y, cw, row.height, "D")
		for i, line := range row.lines[c] {
			r.pdf.SetXY(x, y+padding+float64(i)*lh)
			r.pdf.CellFormat(cw, lh, r.tr(line), "", 0, "LM", false, 0, "")
		}
		x += cw
	}
	r.pdf.SetXY(r.left, y+row.height)
}

func (r *tableRenderer) width(s string) float64 {
	return r.pdf.GetStringWidth(r.tr(s))
}

// wrap breaks text into lines no wider than width, at spaces where possible
// and inside words that are wider than a line on their own. Newlines in the
// text always start a new line.
func (r *tableRenderer) wrap(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if r.width(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for r.width(word) > width {
				cut := r.prefix(word, width)
				if cut == len(word) {
					break
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

// prefix returns the byte length of the longest prefix of word that fits
// within width, and at least one rune.
func (r *tableRenderer) prefix(word string, width float64) int {
	end := 0
	for i, rn := range word {
		next := i + utf8.RuneLen(rn)
		if end > 0 && r.width(word[:next]) > width {
			break
		}
		end = next
	}
	return end
}

// ellipsize returns the longest prefix of text followed by an ellipsis that
// fits within width, or "" when not even the ellipsis fits.
func (r *tableRenderer) ellipsize(text string, width float64) string {
	runes := []rune(text)
	for n := len(runes); n >= 0; n-- {
		out := string(runes[:n]) + ellipsis
		if r.width(out) <= width {
			return out
		}
	}
	return ""
}
