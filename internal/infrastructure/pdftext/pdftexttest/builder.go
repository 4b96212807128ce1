// Package pdftexttest builds minimal single-page PDFs with a text layer for
// tests of code that reads PDF text.
package pdftexttest

import (
	"bytes"
	"fmt"
	"strings"
)

// Run is one separately positioned text show operation, in points from the
// bottom-left corner of a US Letter page.
type Run struct {
	X, Y float64
	Text string
}

// Build returns a PDF whose only page draws every run with Helvetica in
// WinAnsiEncoding. Text outside that encoding is replaced by '?'.
func Build(runs ...Run) []byte {
	var content bytes.Buffer
	for _, r := range runs {
		fmt.Fprintf(&content, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", r.X, r.Y, encode(r.Text))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

// encode escapes text for a PDF literal string, writing non-ASCII
// characters as octal WinAnsi codes.
func encode(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x80:
			b.WriteRune(r)
		case r == '€':
			b.WriteString(`\200`)
		case r >= 0xA0 && r <= 0xFF:
			fmt.Fprintf(&b, "\\%03o", r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
