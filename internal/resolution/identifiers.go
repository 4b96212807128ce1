package resolution

import (
	"regexp"
	"strconv"
	"time"
)

const minIdentifierYear = 2000

var (
	// An identifier followed by its date and amount columns.
	tableRowExpr   = regexp.MustCompile(`(\d{4}/C022/\d{8})[\s\p{Zs}]+\d{2}/\d{2}/\d{4}[\s\p{Zs}]+[\d.,]+[\s\p{Zs}]*€`)
	bareExpr       = regexp.MustCompile(`\d{4}/C022/\d{8}`)
	identifierExpr = regexp.MustCompile(`^(\d{4})/C022/\d{8}$`)
)

// Validator checks identifier syntax and that the year is not in the future.
type Validator struct {
	Now func() time.Time
}

// Valid reports whether id is YYYY/C022/NNNNNNNN with 2000 <= YYYY <= this year.
func (v Validator) Valid(id string) bool {
	m := identifierExpr.FindStringSubmatch(id)
	if m == nil {
		return false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return year >= minIdentifierYear && year <= v.now().Year()
}

func (v Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

// Extractor pulls case identifiers out of normalized text.
type Extractor struct {
	Validator Validator
}

// Extract prefers identifiers found in table rows; only when there are none
// does it fall back to bare identifiers anywhere in the text. Invalid
// candidates are dropped and the result holds each identifier once, in
// order of first appearance.
func (e Extractor) Extract(text string) []string {
	var candidates []string
	for _, m := range tableRowExpr.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}

	ids := e.keepValid(candidates)
	if len(ids) > 0 {
		return ids
	}
	return e.keepValid(bareExpr.FindAllString(text, -1))
}

func (e Extractor) keepValid(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, id := range candidates {
		if _, ok := seen[id]; ok {
			continue
		}
		if !e.Validator.Valid(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
