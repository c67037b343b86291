// Package docx reads and writes DOCX (Office Open XML) documents holding a
// title paragraph and tables.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/tabulate/model"
)

// Reader provides access to DOCX document content.
type Reader struct {
	closer     io.Closer
	files      []*zip.File
	document   *documentXML
	coreProps  *corePropertiesXML
	appProps   *appPropertiesXML
	paragraphs []parsedParagraph
}

// parsedParagraph holds a parsed body paragraph.
type parsedParagraph struct {
	Text    string
	StyleID string
	Bold    bool
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, &model.MalformedDocumentError{Reason: "opening ZIP archive", Err: err}
	}

	r, err := newReader(zr.File)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.closer = zr
	return r, nil
}

// NewReader reads a DOCX document from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &model.MalformedDocumentError{Reason: "opening ZIP archive", Err: err}
	}
	return newReader(zr.File)
}

// OpenBytes reads a DOCX document held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

func newReader(files []*zip.File) (*Reader, error) {
	r := &Reader{files: files}

	// Validate required files exist
	if err := r.validate(); err != nil {
		return nil, err
	}

	// Parse document.xml
	if err := r.parseDocument(); err != nil {
		return nil, &model.MalformedDocumentError{Reason: "parsing document", Err: err}
	}

	// Parse metadata (optional)
	r.parseCoreProperties()
	r.parseAppProperties()

	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.files {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return &model.MalformedDocumentError{Reason: "missing required file " + name}
		}
	}

	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.files {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// Title returns the text of the first paragraph styled as a title, or the
// core properties title when the body has none.
func (r *Reader) Title() string {
	for _, p := range r.paragraphs {
		if strings.EqualFold(p.StyleID, "title") {
			return p.Text
		}
	}
	if r.coreProps != nil {
		return r.coreProps.Title
	}
	return ""
}

// Paragraphs returns the text of the body paragraphs outside tables.
func (r *Reader) Paragraphs() []string {
	out := make([]string, 0, len(r.paragraphs))
	for _, p := range r.paragraphs {
		out = append(out, p.Text)
	}
	return out
}

// Text extracts and returns all paragraph and table text, tables rendered
// one row per line with tab-separated cells.
func (r *Reader) Text() string {
	var result strings.Builder
	for i, para := range r.paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(para.Text)
	}
	for _, t := range r.Tables() {
		for _, row := range t.Texts() {
			result.WriteString("\n")
			result.WriteString(strings.Join(row, "\t"))
		}
	}
	return result.String()
}

// Tables returns every body table as a model.Table of string cells, titled
// with the document title.
func (r *Reader) Tables() []*model.Table {
	if r.document == nil || r.document.Body == nil {
		return nil
	}
	title := r.Title()
	tables := make([]*model.Table, 0, len(r.document.Body.Tables))
	for _, tbl := range r.document.Body.Tables {
		t := parseTable(tbl)
		t.Title = title
		tables = append(tables, t)
	}
	return tables
}

// TableInfo returns layout information for every body table, in the same
// order as Tables.
func (r *Reader) TableInfo() []TableInfo {
	if r.document == nil || r.document.Body == nil {
		return nil
	}
	infos := make([]TableInfo, 0, len(r.document.Body.Tables))
	for _, tbl := range r.document.Body.Tables {
		infos = append(infos, tableInfo(tbl))
	}
	return infos
}

// Metadata returns document metadata.
func (r *Reader) Metadata() model.Metadata {
	meta := model.Metadata{}
	if r.coreProps != nil {
		meta.Title = r.coreProps.Title
		meta.Subject = r.coreProps.Subject
	}
	if r.appProps != nil {
		meta.Creator = r.appProps.Application
	}
	return meta
}

// parseDocument parses the main document content.
func (r *Reader) parseDocument() error {
	data, err := r.getFileContent("word/document.xml")
	if err != nil {
		return err
	}

	r.document = &documentXML{}
	if err := xml.Unmarshal(data, r.document); err != nil {
		return fmt.Errorf("unmarshaling document.xml: %w", err)
	}

	if r.document.Body != nil {
		r.paragraphs = make([]parsedParagraph, 0, len(r.document.Body.Paragraphs))
		for _, p := range r.document.Body.Paragraphs {
			r.paragraphs = append(r.paragraphs, processParagraph(p))
		}
	}

	return nil
}

// parseCoreProperties parses Dublin Core metadata.
func (r *Reader) parseCoreProperties() {
	data, err := r.getFileContent("docProps/core.xml")
	if err != nil {
		return
	}

	props := &corePropertiesXML{}
	if xml.Unmarshal(data, props) == nil {
		r.coreProps = props
	}
}

// parseAppProperties parses application metadata.
func (r *Reader) parseAppProperties() {
	data, err := r.getFileContent("docProps/app.xml")
	if err != nil {
		return
	}

	props := &appPropertiesXML{}
	if xml.Unmarshal(data, props) == nil {
		r.appProps = props
	}
}

// processParagraph joins the text of a paragraph's runs.
func processParagraph(p paragraphXML) parsedParagraph {
	parsed := parsedParagraph{
		StyleID: p.Properties.Style.Val,
	}

	var textParts []string
	for _, run := range p.Runs {
		runText := extractRunText(run)
		if runText == "" {
			continue
		}
		textParts = append(textParts, runText)
		if run.Properties.Bold.XMLName.Local != "" && run.Properties.Bold.Val != "false" {
			parsed.Bold = true
		}
	}
	parsed.Text = strings.Join(textParts, "")

	return parsed
}

// extractRunText extracts text from a run element.
func extractRunText(run runXML) string {
	var parts []string

	for _, t := range run.Text {
		parts = append(parts, t.Value)
	}

	// Handle tab characters
	for range run.Tabs {
		parts = append(parts, "\t")
	}

	// Handle breaks
	for range run.Breaks {
		parts = append(parts, "\n")
	}

	return strings.Join(parts, "")
}
