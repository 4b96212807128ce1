package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ResolutionScanner/internal/config"
	"ResolutionScanner/internal/scanner"
)

// MarkerHref picks up anchors and images whose href/src already points at
// the document retrieval endpoint.
type MarkerHref struct {
	Marker string
}

func (MarkerHref) Name() string { return config.HeuristicMarkerHref }

func (h MarkerHref) Candidates(page scanner.Page) []string {
	var out []string
	collect := func(sel *goquery.Selection, attr string) {
		sel.Each(func(_ int, s *goquery.Selection) {
			value, ok := s.Attr(attr)
			if !ok || !strings.Contains(value, h.Marker) {
				return
			}
			if link, ok := resolve(page.Base, value); ok {
				out = append(out, link)
			}
		})
	}
	collect(page.Doc.Find("a[href]"), "href")
	collect(page.Doc.Find("img[src]"), "src")
	return out
}

// MarkerScript recovers document paths hidden in onclick handlers and image
// titles. The URL is built from the listing URL directly instead of being
// resolved as a relative reference.
type MarkerScript struct {
	Marker string
}

func (MarkerScript) Name() string { return config.HeuristicMarkerScript }

func (h MarkerScript) Candidates(page scanner.Page) []string {
	expr := regexp.MustCompile(regexp.QuoteMeta(h.Marker) + `/([^'"]+)`)
	prefix := strings.TrimRight(page.Base.String(), "/") + "/" + h.Marker + "/"

	var out []string
	collect := func(sel *goquery.Selection, attr string) {
		sel.Each(func(_ int, s *goquery.Selection) {
			value, ok := s.Attr(attr)
			if !ok || !strings.Contains(value, h.Marker) {
				return
			}
			if m := expr.FindStringSubmatch(value); m != nil {
				out = append(out, prefix+m[1])
			}
		})
	}
	collect(page.Doc.Find("a[onclick]"), "onclick")
	collect(page.Doc.Find("img[title]"), "title")
	return out
}

// KeywordText follows anchors whose visible text mentions the programme.
type KeywordText struct {
	Keywords []string
}

func (KeywordText) Name() string { return config.HeuristicKeywordText }

func (h KeywordText) Candidates(page scanner.Page) []string {
	keywords := make([]string, 0, len(h.Keywords))
	for _, k := range h.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	var out []string
	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(s.Text())
		for _, k := range keywords {
			if !strings.Contains(text, k) {
				continue
			}
			href, _ := s.Attr("href")
			if link, ok := resolve(page.Base, href); ok {
				out = append(out, link)
			}
			return
		}
	})
	return out
}

// TableRows takes every link inside a table row; the fetcher rejects
// whatever turns out not to be a document.
type TableRows struct{}

func (TableRows) Name() string { return config.HeuristicTableRows }

func (TableRows) Candidates(page scanner.Page) []string {
	var out []string
	page.Doc.Find("table tr a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link, ok := resolve(page.Base, href); ok {
			out = append(out, link)
		}
	})
	return out
}

// DefaultHeuristics returns all four heuristics configured from listing.
func DefaultHeuristics(listing config.ListingConfig) []scanner.Heuristic {
	marker := listing.Marker
	if marker == "" {
		marker = config.DocumentMarker
	}
	return []scanner.Heuristic{
		MarkerHref{Marker: marker},
		MarkerScript{Marker: marker},
		KeywordText{Keywords: listing.Keywords},
		TableRows{},
	}
}

func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
