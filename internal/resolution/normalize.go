// Package resolution turns the text of a published resolution into a
// classification and the set of case identifiers it lists.
package resolution

import (
	"regexp"
	"strings"
)

var (
	annexStartExpr = regexp.MustCompile(`(?is)ANEXO.*?EXPEDIENTES`)
	annexNextExpr  = regexp.MustCompile(`(?i)ANEXO`)
	// \s is ASCII-only in RE2; \p{Zs} adds no-break and other space separators.
	whitespaceExpr = regexp.MustCompile(`[\s\p{Zs}]+`)
	// Verification footers repeat on every page and carry long digit runs.
	signatureExpr = regexp.MustCompile(`(?i)CÓDIGO SEGURO DE VERIFICACIÓN.*?PÁGINA\s?\d+/\d+`)
)

// Normalize prepares extracted text for matching: it keeps only the
// annex listing cases when there is one, collapses whitespace, upper-cases
// and drops verification signature blocks.
func Normalize(text string) string {
	text = IsolateAnnex(text)
	text = whitespaceExpr.ReplaceAllString(text, " ")
	text = strings.ToUpper(text)
	text = signatureExpr.ReplaceAllString(text, "")
	return text
}

// IsolateAnnex returns the section opening with "ANEXO … EXPEDIENTES" up to
// the next "ANEXO" or the end of text. Text without such a section is
// returned unchanged.
func IsolateAnnex(text string) string {
	loc := annexStartExpr.FindStringIndex(text)
	if loc == nil {
		return text
	}
	rest := text[loc[1]:]
	if next := annexNextExpr.FindStringIndex(rest); next != nil {
		return text[loc[0] : loc[1]+next[0]]
	}
	return text[loc[0]:]
}
