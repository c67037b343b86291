// Package htmldoc reads and writes HTML documents holding a titled table.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/tabulate/model"
)

// Reader provides access to the tables of an HTML document.
type Reader struct {
	doc      *html.Node
	title    string
	heading  string
	metadata map[string]string
	tables   []*model.Table
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{
		doc:      doc,
		metadata: make(map[string]string),
	}

	// Extract title and metadata from head
	reader.extractHead(doc)

	if h1 := findElement(doc, atom.H1); h1 != nil {
		reader.heading = getTextContent(h1)
	}
	reader.collectTables(doc)

	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// Nothing to close for HTML (no file handles kept)
	return nil
}

// Title returns the first <h1> heading, or the <title> element when the
// document has no heading.
func (r *Reader) Title() string {
	if r.heading != "" {
		return r.heading
	}
	return r.title
}

// Tables returns every table in document order. Cells carrying a data-kind
// attribute keep that kind, with data-value as their text when present;
// other cells are strings.
func (r *Reader) Tables() []*model.Table {
	return r.tables
}

// Metadata returns document metadata.
func (r *Reader) Metadata() model.Metadata {
	return model.Metadata{
		Title:   r.title,
		Subject: r.metadata["description"],
		Creator: r.metadata["generator"],
	}
}

// extractHead extracts title and meta tags from the head element.
func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Head {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Title:
				r.title = getTextContent(c)
			case atom.Meta:
				name, content := getAttr(c, "name"), getAttr(c, "content")
				if name != "" && content != "" {
					r.metadata[name] = content
				}
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

// collectTables parses every table element below n. Nested tables are
// parsed on their own and not merged into the enclosing one.
func (r *Reader) collectTables(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		t := parseTable(n)
		t.Title = r.Title()
		r.tables = append(r.tables, t)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.collectTables(c)
	}
}

// parseTable extracts a table from an HTML table element.
func parseTable(tableNode *html.Node) *model.Table {
	table := model.NewTable("")

	// Find thead, tbody, tfoot, or direct tr children
	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead, atom.Tbody, atom.Tfoot:
			parseTableRows(c, table)
		case atom.Tr:
			if row := parseTableRow(c); len(row) > 0 {
				table.AppendRow(row...)
			}
		}
	}

	return table
}

// parseTableRows parses rows within thead, tbody or tfoot.
func parseTableRows(section *html.Node, table *model.Table) {
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Tr {
			if row := parseTableRow(c); len(row) > 0 {
				table.AppendRow(row...)
			}
		}
	}
}

// parseTableRow parses a single table row. A cell with a colspan is
// followed by empty cells for the columns it covers.
func parseTableRow(tr *html.Node) []model.Cell {
	var row []model.Cell

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}

		cell := model.StringCell(getTextContent(c))
		if kind, ok := model.ParseKind(getAttr(c, "data-kind")); ok && kind != model.KindOther {
			cell.Kind = kind
			if v, ok := lookupAttr(c, "data-value"); ok {
				cell.Display = cell.Text
				cell.Text = v
			}
		}
		row = append(row, cell)

		if span, err := strconv.Atoi(getAttr(c, "colspan")); err == nil {
			for i := 1; i < span; i++ {
				row = append(row, model.Cell{})
			}
		}
	}

	return row
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Math, atom.Iframe, atom.Object, atom.Embed:
		return true
	}
	return false
}

// findElement finds the first element with the given tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, a); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		// Skip script/style content
		if shouldSkipElement(n.DataAtom) {
			return
		}
		if n.DataAtom == atom.Br {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
