// Package pdftext reads the embedded text layer of PDF documents.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
)

// Extractor returns page text in reading order. Scanned documents without a
// text layer yield domain.ErrNoTextLayer; there is no OCR fallback.
type Extractor struct{}

var _ ports.TextExtractor = Extractor{}

// New returns a PDF text extractor.
func New() Extractor {
	return Extractor{}
}

// ExtractText parses data and returns the text of every page row by row,
// top to bottom. Separately positioned runs on one row are joined with a
// space so table columns stay apart.
func (Extractor) ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", domain.ErrNoTextLayer
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("read text layer of page %d: %w", i, err)
		}
		writeRows(&buf, rows)
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", domain.ErrNoTextLayer
	}
	return buf.String(), nil
}

func writeRows(buf *strings.Builder, rows pdf.Rows) {
	for _, row := range rows {
		for j, run := range row.Content {
			if j > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(run.S)
		}
		buf.WriteByte('\n')
	}
}
