package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/tabulate/model"
)

const (
	// A4 portrait in twips.
	pageWidth    = 11906
	pageHeight   = 16838
	pageMargin   = 1134
	contentWidth = pageWidth - 2*pageMargin

	titleHalfPoints = 32
	borderEighths   = 4
)

// WriteOptions controls document-level properties of a written document.
type WriteOptions struct {
	Creator string    // Written to docProps/app.xml
	Created time.Time // Written to docProps/core.xml when non-zero
}

// Write serializes t as a Word document: a title paragraph followed by one
// fixed-layout bordered table. Cells hold plain text; the header row is
// bold and repeats on every page.
func Write(w io.Writer, t *model.Table, opts WriteOptions) error {
	doc := &documentOut{
		XmlnsW: nsW,
		XmlnsR: nsR,
		Body: bodyOut{
			Elements: []any{titleParagraph(t.Title)},
			Section:  defaultSection(),
		},
	}
	if len(t.Rows) > 0 && t.ColCount() > 0 {
		doc.Body.Elements = append(doc.Body.Elements, buildTable(t), &paragraphOut{})
	}

	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		body any
	}{
		{"[Content_Types].xml", contentTypes()},
		{"_rels/.rels", &relationshipsOut{
			Xmlns: nsPackageRels,
			Relationships: []relationshipXML{
				{ID: "rId1", Type: relOfficeDocument, Target: "word/document.xml"},
				{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
				{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
			},
		}},
		{"word/_rels/document.xml.rels", &relationshipsOut{
			Xmlns: nsPackageRels,
			Relationships: []relationshipXML{
				{ID: "rId1", Type: relStyles, Target: "styles.xml"},
			},
		}},
		{"word/document.xml", doc},
		{"word/styles.xml", buildStyles()},
		{"docProps/core.xml", buildCoreProps(t.Title, opts)},
		{"docProps/app.xml", &appPropertiesOut{Xmlns: nsExtendedProps, Application: opts.Creator}},
	}

	for _, p := range parts {
		if err := writePart(zw, p.name, p.body); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing ZIP archive: %w", err)
	}
	return nil
}

func writePart(zw *zip.Writer, name string, body any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := xml.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return nil
}

func contentTypes() *contentTypesOut {
	return &contentTypesOut{
		Xmlns: nsContentTypes,
		Defaults: []defaultOut{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []overrideOut{
			{PartName: "/word/document.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
			{PartName: "/word/styles.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
			{PartName: "/docProps/core.xml", ContentType: "application/vnd.openxmlformats-package.core-properties+xml"},
			{PartName: "/docProps/app.xml", ContentType: "application/vnd.openxmlformats-officedocument.extended-properties+xml"},
		},
	}
}

func titleParagraph(title string) *paragraphOut {
	return &paragraphOut{
		Props: &paragraphPropsOut{Style: &valOut{Val: "Title"}},
		Runs:  []runOut{newRun(title, false)},
	}
}

func newRun(text string, bold bool) runOut {
	r := runOut{Text: textOut{Value: text}}
	if strings.TrimSpace(text) != text {
		r.Text.Space = "preserve"
	}
	if bold {
		r.Props = &runPropsOut{Bold: &struct{}{}}
	}
	return r
}

// buildTable lays the table out on a fixed grid that splits the content
// width equally between columns.
func buildTable(t *model.Table) *tableOut {
	cols := t.ColCount()
	colWidth := contentWidth / cols

	border := &borderOut{Val: "single", Sz: borderEighths, Space: 0, Color: "auto"}
	tbl := &tableOut{
		Props: tablePropsOut{
			Width: widthOut{W: strconv.Itoa(colWidth * cols), Type: "dxa"},
			Borders: tableBordersOut{
				Top: border, Left: border, Bottom: border, Right: border,
				InsideH: border, InsideV: border,
			},
			Layout: layoutOut{Type: "fixed"},
		},
	}
	for range cols {
		tbl.Grid.Cols = append(tbl.Grid.Cols, gridColOut{W: colWidth})
	}

	for r, row := range t.Rows {
		tr := rowOut{}
		if r == 0 {
			tr.Props = &rowPropsOut{Header: &struct{}{}}
		}
		for c := 0; c < cols; c++ {
			var text string
			if c < len(row) {
				text = row[c].PlainText()
			}
			tr.Cells = append(tr.Cells, cellOut{
				Props:     cellPropsOut{Width: widthOut{W: strconv.Itoa(colWidth), Type: "dxa"}},
				Paragraph: paragraphOut{Runs: []runOut{newRun(text, r == 0)}},
			})
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return tbl
}

func defaultSection() *sectionOut {
	return &sectionOut{
		PageSize: pageSizeOut{W: pageWidth, H: pageHeight},
		Margins: pageMarginOut{
			Top: pageMargin, Right: pageMargin, Bottom: pageMargin, Left: pageMargin,
			Header: 709, Footer: 709,
		},
	}
}

func buildStyles() *stylesOut {
	return &stylesOut{
		XmlnsW: nsW,
		Styles: []styleOut{
			{Type: "paragraph", Default: "1", StyleID: "Normal", Name: valOut{Val: "Normal"}},
			{
				Type:    "paragraph",
				StyleID: "Title",
				Name:    valOut{Val: "Title"},
				BasedOn: &valOut{Val: "Normal"},
				RunProps: &runPropsOut{
					Bold: &struct{}{},
					Size: &valOut{Val: strconv.Itoa(titleHalfPoints)},
				},
			},
		},
	}
}

func buildCoreProps(title string, opts WriteOptions) *corePropertiesOut {
	props := &corePropertiesOut{
		XmlnsCP:  nsCP,
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

// Marshal-only types. Element names carry the w: prefix literally so the
// output uses the prefixes Word expects.

type contentTypesOut struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []defaultOut  `xml:"Default"`
	Overrides []overrideOut `xml:"Override"`
}

type defaultOut struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideOut struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationshipsOut struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Xmlns         string            `xml:"xmlns,attr"`
	Relationships []relationshipXML `xml:"Relationship"`
}

type documentOut struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	XmlnsR  string   `xml:"xmlns:r,attr"`
	Body    bodyOut  `xml:"w:body"`
}

// bodyOut keeps paragraphs and tables in document order. The section
// properties must come last.
type bodyOut struct {
	Elements []any
	Section  *sectionOut
}

// MarshalXML encodes body elements in order.
func (b bodyOut) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, elem := range b.Elements {
		var name string
		switch elem.(type) {
		case *paragraphOut:
			name = "w:p"
		case *tableOut:
			name = "w:tbl"
		default:
			return fmt.Errorf("unexpected body element %T", elem)
		}
		if err := e.EncodeElement(elem, xml.StartElement{Name: xml.Name{Local: name}}); err != nil {
			return err
		}
	}
	if b.Section != nil {
		if err := e.EncodeElement(b.Section, xml.StartElement{Name: xml.Name{Local: "w:sectPr"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

type paragraphOut struct {
	Props *paragraphPropsOut `xml:"w:pPr,omitempty"`
	Runs  []runOut           `xml:"w:r"`
}

type paragraphPropsOut struct {
	Style *valOut `xml:"w:pStyle,omitempty"`
}

type runOut struct {
	Props *runPropsOut `xml:"w:rPr,omitempty"`
	Text  textOut      `xml:"w:t"`
}

type runPropsOut struct {
	Bold *struct{} `xml:"w:b,omitempty"`
	Size *valOut   `xml:"w:sz,omitempty"`
}

type textOut struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type valOut struct {
	Val string `xml:"w:val,attr"`
}

type tableOut struct {
	Props tablePropsOut `xml:"w:tblPr"`
	Grid  gridOut       `xml:"w:tblGrid"`
	Rows  []rowOut      `xml:"w:tr"`
}

type tablePropsOut struct {
	Width   widthOut        `xml:"w:tblW"`
	Borders tableBordersOut `xml:"w:tblBorders"`
	Layout  layoutOut       `xml:"w:tblLayout"`
}

type widthOut struct {
	W    string `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type tableBordersOut struct {
	Top     *borderOut `xml:"w:top"`
	Left    *borderOut `xml:"w:left"`
	Bottom  *borderOut `xml:"w:bottom"`
	Right   *borderOut `xml:"w:right"`
	InsideH *borderOut `xml:"w:insideH"`
	InsideV *borderOut `xml:"w:insideV"`
}

type borderOut struct {
	Val   string `xml:"w:val,attr"`
	Sz    int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type layoutOut struct {
	Type string `xml:"w:type,attr"`
}

type gridOut struct {
	Cols []gridColOut `xml:"w:gridCol"`
}

type gridColOut struct {
	W int `xml:"w:w,attr"`
}

type rowOut struct {
	Props *rowPropsOut `xml:"w:trPr,omitempty"`
	Cells []cellOut    `xml:"w:tc"`
}

type rowPropsOut struct {
	Header *struct{} `xml:"w:tblHeader,omitempty"`
}

type cellOut struct {
	Props     cellPropsOut `xml:"w:tcPr"`
	Paragraph paragraphOut `xml:"w:p"`
}

type cellPropsOut struct {
	Width widthOut `xml:"w:tcW"`
}

type sectionOut struct {
	PageSize pageSizeOut   `xml:"w:pgSz"`
	Margins  pageMarginOut `xml:"w:pgMar"`
}

type pageSizeOut struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type pageMarginOut struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
}

type stylesOut struct {
	XMLName xml.Name   `xml:"w:styles"`
	XmlnsW  string     `xml:"xmlns:w,attr"`
	Styles  []styleOut `xml:"w:style"`
}

type styleOut struct {
	Type     string       `xml:"w:type,attr"`
	Default  string       `xml:"w:default,attr,omitempty"`
	StyleID  string       `xml:"w:styleId,attr"`
	Name     valOut       `xml:"w:name"`
	BasedOn  *valOut      `xml:"w:basedOn,omitempty"`
	RunProps *runPropsOut `xml:"w:rPr,omitempty"`
}

type corePropertiesOut struct {
	XMLName  xml.Name `xml:"cp:coreProperties"`
	XmlnsCP  string   `xml:"xmlns:cp,attr"`
	XmlnsDC  string   `xml:"xmlns:dc,attr"`
	XmlnsDCT string   `xml:"xmlns:dcterms,attr"`
	XmlnsXSI string   `xml:"xmlns:xsi,attr"`
	Title    string   `xml:"dc:title,omitempty"`
	Creator  string   `xml:"dc:creator,omitempty"`
	Created  *w3cDate `xml:"dcterms:created,omitempty"`
}

type w3cDate struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type appPropertiesOut struct {
	XMLName     xml.Name `xml:"Properties"`
	Xmlns       string   `xml:"xmlns,attr"`
	Application string   `xml:"Application,omitempty"`
}
