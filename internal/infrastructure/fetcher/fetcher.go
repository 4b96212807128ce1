package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ResolutionScanner/internal/config"
	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
)

const (
	// AcceptHTML is sent when requesting the listing page.
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	// AcceptPDF is sent when requesting a document.
	AcceptPDF = "application/pdf,application/x-pdf,application/octet-stream"

	pdfMediaType   = "application/pdf"
	maxDocumentLen = 64 << 20
)

// SetBrowserHeaders makes req look like a desktop browser; the publisher
// rejects requests without these.
func SetBrowserHeaders(req *http.Request, cfg config.FetcherConfig, accept string) {
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", accept)
	if cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", cfg.AcceptLanguage)
	}
}

// NewHTTPClient builds the client shared by the listing scanner and fetcher.
func NewHTTPClient(cfg config.FetcherConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Fetcher downloads resolution documents.
type Fetcher struct {
	client  *http.Client
	cfg     config.FetcherConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.DocumentFetcher = (*Fetcher)(nil)

// New wires an HTTP client; a nil client gets one built from cfg. A
// non-positive RequestsPerSecond disables throttling.
func New(client *http.Client, cfg config.FetcherConfig, log *slog.Logger) *Fetcher {
	if client == nil {
		client = NewHTTPClient(cfg)
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Fetcher{client: client, cfg: cfg, limiter: limiter, logger: log}
}

// Fetch retrieves url and returns its body when the response declares a PDF.
// Any other content type yields domain.ErrNotPDF.
func (f *Fetcher) Fetch(ctx context.Context, url string) (ports.RawDocument, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return ports.RawDocument{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.RawDocument{}, fmt.Errorf("build request: %w", err)
	}
	SetBrowserHeaders(req, f.cfg, AcceptPDF)

	resp, err := f.client.Do(req)
	if err != nil {
		return ports.RawDocument{}, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	f.debug("document response", "url", url, "status", resp.StatusCode, "content_type", contentType)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.RawDocument{}, &domain.StatusError{
			URL:     url,
			Status:  resp.Status,
			Code:    resp.StatusCode,
			Headers: map[string][]string(resp.Header.Clone()),
		}
	}

	if !IsPDF(contentType) {
		return ports.RawDocument{URL: url, ContentType: contentType}, fmt.Errorf("%s declared %q: %w", url, contentType, domain.ErrNotPDF)
	}

	limit := f.cfg.MaxDocumentBytes
	if limit <= 0 {
		limit = maxDocumentLen
	}
	// One byte past the limit tells an oversized body from one that fits exactly.
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return ports.RawDocument{}, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > limit {
		return ports.RawDocument{}, fmt.Errorf("%s exceeds %d bytes: %w", url, limit, domain.ErrDocumentTooLarge)
	}

	return ports.RawDocument{URL: url, ContentType: contentType, Data: data}, nil
}

// IsPDF reports whether a Content-Type header declares a PDF.
func IsPDF(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), pdfMediaType)
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
