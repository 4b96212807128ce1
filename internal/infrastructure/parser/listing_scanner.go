package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ResolutionScanner/internal/config"
	"ResolutionScanner/internal/infrastructure/fetcher"
	"ResolutionScanner/internal/scanner"
)

// ListingScanner downloads and parses the page that lists resolutions.
type ListingScanner struct {
	client *http.Client
	cfg    config.FetcherConfig
	logger *slog.Logger
}

// NewListingScanner wires an HTTP client; nil gets one built from cfg.
func NewListingScanner(client *http.Client, cfg config.FetcherConfig, log *slog.Logger) *ListingScanner {
	if client == nil {
		client = fetcher.NewHTTPClient(cfg)
	}
	return &ListingScanner{client: client, cfg: cfg, logger: log}
}

// Load fetches pageURL and returns the parsed document with its base URL.
func (l *ListingScanner) Load(ctx context.Context, pageURL string) (scanner.Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return scanner.Page{}, fmt.Errorf("invalid listing url %s: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return scanner.Page{}, fmt.Errorf("build request: %w", err)
	}
	fetcher.SetBrowserHeaders(req, l.cfg, fetcher.AcceptHTML)

	resp, err := l.client.Do(req)
	if err != nil {
		return scanner.Page{}, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	l.debug("listing response", "url", pageURL, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		if l.logger != nil {
			l.logger.Warn("listing rejected", "url", pageURL, "status", resp.Status, "headers", resp.Header)
		}
		return scanner.Page{}, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return scanner.Page{}, fmt.Errorf("parse listing: %w", err)
	}

	return scanner.Page{Doc: doc, Base: base}, nil
}

// ParsePage builds a Page from already-downloaded HTML.
func ParsePage(html string, pageURL string) (scanner.Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return scanner.Page{}, fmt.Errorf("invalid listing url %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scanner.Page{}, fmt.Errorf("parse listing: %w", err)
	}
	return scanner.Page{Doc: doc, Base: base}, nil
}

func (l *ListingScanner) debug(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
