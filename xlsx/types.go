// Package xlsx reads and writes XLSX (Office Open XML Spreadsheet) documents.
package xlsx

import "encoding/xml"

// XML namespaces used in XLSX files.
const (
	nsSpreadsheetML = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsExtendedProps = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	nsDC            = "http://purl.org/dc/elements/1.1/"
	nsDCTerms       = "http://purl.org/dc/terms/"
	nsXSI           = "http://www.w3.org/2001/XMLSchema-instance"
)

// Relationship types.
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relWorksheet      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relSharedStrings  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

// workbookXML represents the xl/workbook.xml file structure.
type workbookXML struct {
	XMLName xml.Name  `xml:"workbook"`
	Sheets  sheetsXML `xml:"sheets"`
}

type sheetsXML struct {
	Sheet []sheetRefXML `xml:"sheet"`
}

type sheetRefXML struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"` // r:id attribute for relationship
}

// worksheetXML represents a xl/worksheets/sheet*.xml file structure.
type worksheetXML struct {
	XMLName   xml.Name     `xml:"worksheet"`
	Dimension dimensionXML `xml:"dimension"`
	SheetData sheetDataXML `xml:"sheetData"`
}

type dimensionXML struct {
	Ref string `xml:"ref,attr"` // e.g., "A1:D10"
}

type sheetDataXML struct {
	Rows []rowXML `xml:"row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // Row number (1-indexed)
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"` // Cell reference (e.g., "A1")
	T  string        `xml:"t,attr"` // Type: s=shared string, n=number, b=bool, str=inline string, e=error
	S  int           `xml:"s,attr"` // Style index
	V  string        `xml:"v"`      // Value
	F  string        `xml:"f"`      // Formula (optional)
	Is *inlineStrXML `xml:"is"`     // Inline string (optional)
}

// hasValue reports whether the cell carries content rather than only a
// style.
func (c *cellXML) hasValue() bool {
	return c.V != "" || c.F != "" || (c.Is != nil && c.Is.T != "")
}

type inlineStrXML struct {
	T string `xml:"t"` // Text content
}

// sharedStringsXML represents the xl/sharedStrings.xml file structure.
type sharedStringsXML struct {
	XMLName xml.Name `xml:"sst"`
	Count   int      `xml:"count,attr"`
	Unique  int      `xml:"uniqueCount,attr"`
	SI      []siXML  `xml:"si"`
}

type siXML struct {
	T string `xml:"t"` // Simple text
	R []rXML `xml:"r"` // Rich text runs
}

type rXML struct {
	T string `xml:"t"` // Text in run
}

// stylesXML represents the xl/styles.xml file structure.
type stylesXML struct {
	XMLName xml.Name    `xml:"styleSheet"`
	NumFmts *numFmtsXML `xml:"numFmts"`
	CellXfs *cellXfsXML `xml:"cellXfs"`
}

type numFmtsXML struct {
	NumFmt []numFmtXML `xml:"numFmt"`
}

type numFmtXML struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type cellXfsXML struct {
	Xf []xfXML `xml:"xf"`
}

type xfXML struct {
	NumFmtID int `xml:"numFmtId,attr"`
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// corePropertiesXML represents docProps/core.xml.
type corePropertiesXML struct {
	XMLName xml.Name `xml:"coreProperties"`
	Title   string   `xml:"title"`
	Subject string   `xml:"subject"`
	Creator string   `xml:"creator"`
}

// appPropertiesXML represents docProps/app.xml.
type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
}

// The types below are only marshaled. Prefixed names ("r:id", "dc:title")
// are written literally, with the prefix declared on the root element.

type contentTypesOut struct {
	XMLName  xml.Name      `xml:"Types"`
	Xmlns    string        `xml:"xmlns,attr"`
	Defaults []defaultOut  `xml:"Default"`
	Override []overrideOut `xml:"Override"`
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

type workbookOut struct {
	XMLName xml.Name      `xml:"workbook"`
	Xmlns   string        `xml:"xmlns,attr"`
	XmlnsR  string        `xml:"xmlns:r,attr"`
	Sheets  []sheetRefOut `xml:"sheets>sheet"`
}

type sheetRefOut struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"r:id,attr"`
}

type worksheetOut struct {
	XMLName   xml.Name      `xml:"worksheet"`
	Xmlns     string        `xml:"xmlns,attr"`
	XmlnsR    string        `xml:"xmlns:r,attr"`
	Dimension *dimensionXML `xml:"dimension,omitempty"`
	Cols      *colsOut      `xml:"cols,omitempty"`
	SheetData sheetDataOut  `xml:"sheetData"`
}

type sheetDataOut struct {
	Rows []rowOut `xml:"row"`
}

type colsOut struct {
	Col []colOut `xml:"col"`
}

type colOut struct {
	Min         int     `xml:"min,attr"`
	Max         int     `xml:"max,attr"`
	Width       float64 `xml:"width,attr"`
	CustomWidth int     `xml:"customWidth,attr"`
}

type rowOut struct {
	R     int       `xml:"r,attr"`
	Cells []cellOut `xml:"c"`
}

type cellOut struct {
	R string `xml:"r,attr"`
	T string `xml:"t,attr,omitempty"`
	S int    `xml:"s,attr,omitempty"`
	V string `xml:"v"`
}

type sharedStringsOut struct {
	XMLName xml.Name `xml:"sst"`
	Xmlns   string   `xml:"xmlns,attr"`
	Count   int      `xml:"count,attr"`
	Unique  int      `xml:"uniqueCount,attr"`
	SI      []siOut  `xml:"si"`
}

type siOut struct {
	T textOut `xml:"t"`
}

type textOut struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type stylesOut struct {
	XMLName      xml.Name   `xml:"styleSheet"`
	Xmlns        string     `xml:"xmlns,attr"`
	NumFmts      numFmtsOut `xml:"numFmts"`
	Fonts        fontsOut   `xml:"fonts"`
	Fills        fillsOut   `xml:"fills"`
	Borders      bordersOut `xml:"borders"`
	CellStyleXfs xfsOut     `xml:"cellStyleXfs"`
	CellXfs      xfsOut     `xml:"cellXfs"`
}

type numFmtsOut struct {
	Count  int         `xml:"count,attr"`
	NumFmt []numFmtXML `xml:"numFmt"`
}

type fontsOut struct {
	Count int       `xml:"count,attr"`
	Font  []fontOut `xml:"font"`
}

type fontOut struct {
	B    *struct{} `xml:"b,omitempty"`
	Sz   valOut    `xml:"sz"`
	Name valOut    `xml:"name"`
}

type valOut struct {
	Val string `xml:"val,attr"`
}

type fillsOut struct {
	Count int       `xml:"count,attr"`
	Fill  []fillOut `xml:"fill"`
}

type fillOut struct {
	PatternFill struct {
		PatternType string `xml:"patternType,attr"`
	} `xml:"patternFill"`
}

type bordersOut struct {
	Count  int         `xml:"count,attr"`
	Border []borderOut `xml:"border"`
}

type borderOut struct {
	Left   struct{} `xml:"left"`
	Right  struct{} `xml:"right"`
	Top    struct{} `xml:"top"`
	Bottom struct{} `xml:"bottom"`
}

type xfsOut struct {
	Count int     `xml:"count,attr"`
	Xf    []xfOut `xml:"xf"`
}

type xfOut struct {
	NumFmtID          int `xml:"numFmtId,attr"`
	FontID            int `xml:"fontId,attr"`
	FillID            int `xml:"fillId,attr"`
	BorderID          int `xml:"borderId,attr"`
	ApplyNumberFormat int `xml:"applyNumberFormat,attr,omitempty"`
	ApplyFont         int `xml:"applyFont,attr,omitempty"`
}

type corePropertiesOut struct {
	XMLName  xml.Name `xml:"cp:coreProperties"`
	XmlnsCP  string   `xml:"xmlns:cp,attr"`
	XmlnsDC  string   `xml:"xmlns:dc,attr"`
	XmlnsDCT string   `xml:"xmlns:dcterms,attr"`
	XmlnsXSI string   `xml:"xmlns:xsi,attr"`
	Title    string   `xml:"dc:title,omitempty"`
	Subject  string   `xml:"dc:subject,omitempty"`
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
	Application string   `xml:"Application"`
}
