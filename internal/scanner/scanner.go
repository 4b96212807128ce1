package scanner

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Page carries a parsed listing page together with the URL it was read from.
type Page struct {
	Doc  *goquery.Document
	Base *url.URL
}

// Heuristic is a single link-discovery rule applied to a listing page.
// Implementations must not mutate the document.
type Heuristic interface {
	Name() string
	Candidates(page Page) []string
}

// Registry keeps a mapping from heuristic names to their implementations.
type Registry struct {
	heuristics map[string]Heuristic
	order      []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{heuristics: map[string]Heuristic{}}
}

// Register adds or replaces a heuristic implementation.
func (r *Registry) Register(h Heuristic) {
	if r.heuristics == nil {
		r.heuristics = map[string]Heuristic{}
	}
	if _, ok := r.heuristics[h.Name()]; !ok {
		r.order = append(r.order, h.Name())
	}
	r.heuristics[h.Name()] = h
}

// Resolve returns a heuristic by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Heuristic, error) {
	if h, ok := r.heuristics[name]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("heuristic %s is not registered", name)
}

// Names lists registered heuristics in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Union runs every heuristic against the page and collapses duplicate URLs,
// keeping the order in which each URL was first produced.
func Union(page Page, heuristics []Heuristic) []string {
	seen := map[string]struct{}{}
	var links []string
	for _, h := range heuristics {
		for _, link := range h.Candidates(page) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	return links
}
