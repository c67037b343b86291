package htmldoc

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/tabulate/model"
)

// WriteOptions controls document-level properties of a written document.
type WriteOptions struct {
	Creator string // Written as a generator meta tag
	Lang    string // Value of the html lang attribute; "en" when empty
}

// Write renders t as a standalone HTML document: the title as <title> and
// <h1>, then one table with the header row in <thead>. Data cells of a
// non-string kind carry a data-kind attribute, and a data-value attribute
// when their displayed text differs from the cell text.
func Write(w io.Writer, t *model.Table, opts WriteOptions) error {
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	if opts.Creator != "" {
		head.AppendChild(element(atom.Meta,
			html.Attribute{Key: "name", Val: "generator"},
			html.Attribute{Key: "content", Val: opts.Creator}))
	}
	head.AppendChild(textElement(atom.Title, t.Title))

	body := element(atom.Body)
	body.AppendChild(textElement(atom.H1, t.Title))
	if len(t.Rows) > 0 {
		body.AppendChild(buildTable(t))
	}

	root := element(atom.Html, html.Attribute{Key: "lang", Val: lang})
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}

func buildTable(t *model.Table) *html.Node {
	table := element(atom.Table)

	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, cell := range t.Rows[0] {
		tr.AppendChild(textElement(atom.Th, cell.PlainText(), html.Attribute{Key: "scope", Val: "col"}))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range t.DataRows() {
		tr := element(atom.Tr)
		for _, cell := range row {
			tr.AppendChild(dataCell(cell))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)

	return table
}

func dataCell(cell model.Cell) *html.Node {
	var attrs []html.Attribute
	switch cell.Kind {
	case model.KindEmpty, model.KindString:
	default:
		attrs = append(attrs, html.Attribute{Key: "data-kind", Val: cell.Kind.String()})
		if cell.PlainText() != cell.Text {
			attrs = append(attrs, html.Attribute{Key: "data-value", Val: cell.Text})
		}
	}
	return textElement(atom.Td, cell.PlainText(), attrs...)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func textElement(a atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	n := element(a, attrs...)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}
