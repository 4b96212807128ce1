package ports

import (
	"context"
	"time"

	"ResolutionScanner/internal/domain"
)

// LinkSource discovers document links on the configured listing page.
type LinkSource interface {
	Discover(ctx context.Context) ([]string, error)
}

// RawDocument is the body of a fetched document with its declared media type.
type RawDocument struct {
	URL         string
	ContentType string
	Data        []byte
}

// DocumentFetcher retrieves a single document. Content that is not a PDF is
// reported with domain.ErrNotPDF.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (RawDocument, error)
}

// TextExtractor returns the embedded text layer of a PDF.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// CaseRepository stores case records keyed by identifier. Find returns
// domain.ErrNotFound when the identifier is absent.
type CaseRepository interface {
	Find(ctx context.Context, identifier string) (domain.CaseRecord, error)
	Insert(ctx context.Context, record domain.CaseRecord) error
	Update(ctx context.Context, record domain.CaseRecord) error
}

// ArchivedDocument points to a stored raw document.
type ArchivedDocument struct {
	Path string
	Type domain.ResolutionType
}

// ArchiveSink keeps raw documents grouped by resolution type.
type ArchiveSink interface {
	Store(ctx context.Context, resolution domain.ResolutionType, data []byte, at time.Time) (string, error)
	List(ctx context.Context) ([]ArchivedDocument, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
