package parser

import (
	"context"
	"fmt"
	"log/slog"

	"ResolutionScanner/internal/config"
	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
	"ResolutionScanner/internal/scanner"
)

// StrategySource implements LinkSource by running the configured heuristics
// over the listing page.
type StrategySource struct {
	registry *scanner.Registry
	listing  config.ListingConfig
	loader   *ListingScanner
	logger   *slog.Logger
}

var _ ports.LinkSource = (*StrategySource)(nil)

// NewStrategySource wires the heuristic registry with the listing config.
func NewStrategySource(reg *scanner.Registry, listing config.ListingConfig, loader *ListingScanner, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		listing:  listing,
		loader:   loader,
		logger:   log,
	}
}

// Discover loads the listing page and returns the union of every heuristic's
// links. Any failure is returned as *domain.DiscoveryError.
func (s *StrategySource) Discover(ctx context.Context) ([]string, error) {
	if s.registry == nil || s.loader == nil {
		return nil, &domain.DiscoveryError{URL: s.listing.URL, Err: fmt.Errorf("link source is not configured")}
	}

	heuristics, err := s.heuristics()
	if err != nil {
		return nil, &domain.DiscoveryError{URL: s.listing.URL, Err: err}
	}

	s.debug("discover links", "url", s.listing.URL, "heuristics", len(heuristics))

	page, err := s.loader.Load(ctx, s.listing.URL)
	if err != nil {
		return nil, &domain.DiscoveryError{URL: s.listing.URL, Err: err}
	}

	links := scanner.Union(page, heuristics)
	s.debug("links discovered", "count", len(links))
	return links, nil
}

func (s *StrategySource) heuristics() ([]scanner.Heuristic, error) {
	names := s.listing.Heuristics
	if len(names) == 0 {
		names = s.registry.Names()
	}

	out := make([]scanner.Heuristic, 0, len(names))
	for _, name := range names {
		h, err := s.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
