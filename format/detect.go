// Package format identifies the document formats tabulate reads and writes.
package format

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabulate/model"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// XLSX indicates a Microsoft Excel (.xlsx) document.
	XLSX
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// PDF indicates a PDF document.
	PDF
	// HTML indicates an HTML document.
	HTML
)

// All lists every known format in declaration order.
var All = []Format{XLSX, DOCX, PDF, HTML}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case XLSX:
		return "XLSX"
	case DOCX:
		return "DOCX"
	case PDF:
		return "PDF"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case XLSX:
		return ".xlsx"
	case DOCX:
		return ".docx"
	case PDF:
		return ".pdf"
	case HTML:
		return ".html"
	default:
		return ""
	}
}

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case PDF:
		return "application/pdf"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Importable reports whether records can be read back from the format.
func (f Format) Importable() bool {
	return f == XLSX
}

// Parse returns the format named by s. It accepts format names, file
// extensions with or without the dot, and the aliases "excel" and "word",
// ignoring case.
func Parse(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "xlsx", "excel":
		return XLSX, nil
	case "docx", "word":
		return DOCX, nil
	case "pdf":
		return PDF, nil
	case "html", "htm":
		return HTML, nil
	}
	return Unknown, fmt.Errorf("%w: %q", model.ErrUnknownFormat, s)
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return XLSX
	case ".docx":
		return DOCX
	case ".pdf":
		return PDF
	case ".html", ".htm":
		return HTML
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// Returns Unknown if the format cannot be determined from magic bytes alone;
// ZIP-based formats need DetectFromReader.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	if isPDFMagic(data) {
		return PDF
	}

	if isZIPMagic(data) {
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

func isPDFMagic(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "%PDF"
}

// isZIPMagic checks for the local file header signature PK\x03\x04.
func isZIPMagic(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	// Trim leading whitespace and a UTF-8 byte order mark
	text := strings.TrimLeft(strings.TrimPrefix(string(data), "\ufeff"), " \t\r\n")
	if text == "" {
		return false
	}

	upper := strings.ToUpper(text)
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

// DetectFromReader inspects the content to determine format. It can
// distinguish between ZIP-based formats (DOCX, XLSX).
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch {
	case isPDFMagic(magic):
		return PDF, nil
	case isZIPMagic(magic):
		return detectZIPFormat(r, size)
	case detectHTMLMagic(magic):
		return HTML, nil
	}

	return Unknown, nil
}

// detectZIPFormat inspects a ZIP archive to determine if it's DOCX or XLSX.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, &model.MalformedDocumentError{Reason: "opening ZIP archive", Err: err}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		}
	}

	return Unknown, nil
}
