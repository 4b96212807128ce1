package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
	"ResolutionScanner/internal/resolution"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source     ports.LinkSource
	Fetcher    ports.DocumentFetcher
	Extractor  ports.TextExtractor
	Analyzer   resolution.Analyzer
	Repository ports.CaseRepository
	Archive    ports.ArchiveSink
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline implements the resolution ingestion workflow.
type Pipeline struct {
	source     ports.LinkSource
	fetcher    ports.DocumentFetcher
	extractor  ports.TextExtractor
	analyzer   resolution.Analyzer
	reconciler *Reconciler
	archive    ports.ArchiveSink
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	analyzer := deps.Analyzer
	if analyzer.Extractor.Validator.Now == nil {
		analyzer.Extractor.Validator.Now = now
	}
	return &Pipeline{
		source:     deps.Source,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		analyzer:   analyzer,
		reconciler: NewReconciler(deps.Repository, deps.Logger),
		archive:    deps.Archive,
		logger:     deps.Logger,
		now:        now,
	}
}

// Run discovers document links and processes them one at a time. Only a
// discovery failure is returned as an error; every per-document problem is
// recorded in the summary's Skipped list. A cancelled context stops the run
// between documents and returns the partial summary with ctx.Err().
func (p *Pipeline) Run(ctx context.Context) (domain.BatchSummary, error) {
	if p.source == nil {
		return domain.BatchSummary{}, errors.New("link source is not configured")
	}

	links, err := p.source.Discover(ctx)
	if err != nil {
		return domain.BatchSummary{}, err
	}
	p.info("links discovered", "total", len(links))

	summary := domain.BatchSummary{Total: len(links)}
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			summary.Processed = len(summary.Outcomes)
			return summary, err
		}

		outcome, skip := p.ProcessDocument(ctx, link)
		if skip != nil {
			summary.Skipped = append(summary.Skipped, *skip)
			continue
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	summary.Processed = len(summary.Outcomes)

	p.info("batch finished", "total", summary.Total, "processed", summary.Processed, "skipped", len(summary.Skipped))
	return summary, nil
}

// ProcessDocument runs fetch, extraction, analysis, archival and
// reconciliation for one link. It returns a skip instead of an outcome when
// the document cannot contribute any case record.
func (p *Pipeline) ProcessDocument(ctx context.Context, url string) (domain.DocumentOutcome, *domain.DocumentSkip) {
	if p.fetcher == nil {
		return domain.DocumentOutcome{}, p.skip(url, domain.SkipFetch, errors.New("document fetcher is not configured"))
	}

	raw, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, domain.ErrNotPDF) {
			return domain.DocumentOutcome{}, p.skip(url, domain.SkipNotPDF, err)
		}
		return domain.DocumentOutcome{}, p.skip(url, domain.SkipFetch, err)
	}

	analysis, err := p.analyze(raw.Data)
	if err != nil {
		return domain.DocumentOutcome{}, p.skip(url, domain.SkipExtract, err)
	}
	if len(analysis.Identifiers) == 0 {
		return domain.DocumentOutcome{}, p.skip(url, domain.SkipNoIdentifiers, domain.ErrNoIdentifiers)
	}
	if !analysis.Type.Resolved() {
		return domain.DocumentOutcome{}, p.skip(url, domain.SkipUnresolved, domain.ErrUnresolved)
	}

	at := p.now()
	outcome := domain.DocumentOutcome{
		URL:         url,
		Type:        analysis.Type,
		Identifiers: len(analysis.Identifiers),
		ArchivePath: p.store(ctx, url, analysis.Type, raw.Data, at),
	}

	tally := p.reconciler.ReconcileAll(ctx, analysis.Identifiers, analysis.Type, url, at)
	outcome.New = tally.New
	outcome.Updated = tally.Updated
	outcome.Failed = tally.Failed
	outcome.Written = tally.Written()

	p.info("document processed", "url", url, "type", outcome.Type,
		"identifiers", outcome.Identifiers, "new", outcome.New, "updated", outcome.Updated, "failed", outcome.Failed)
	return outcome, nil
}

// ProcessUpload analyzes a document supplied directly by a caller and
// persists its cases with domain.UploadSource as their source.
func (p *Pipeline) ProcessUpload(ctx context.Context, data []byte) (domain.UploadOutcome, error) {
	analysis, err := p.analyze(data)
	if err != nil {
		return domain.UploadOutcome{}, fmt.Errorf("analyze upload: %w", err)
	}
	if len(analysis.Identifiers) == 0 {
		return domain.UploadOutcome{}, domain.ErrNoIdentifiers
	}
	if !analysis.Type.Resolved() {
		return domain.UploadOutcome{}, domain.ErrUnresolved
	}

	tally := p.reconciler.ReconcileAll(ctx, analysis.Identifiers, analysis.Type, domain.UploadSource, p.now())
	p.info("upload processed", "type", analysis.Type, "identifiers", len(analysis.Identifiers),
		"new", tally.New, "updated", tally.Updated, "failed", tally.Failed)

	return domain.UploadOutcome{
		Type:    analysis.Type,
		Written: tally.Written(),
		New:     tally.New,
		Updated: tally.Updated,
		Total:   len(analysis.Identifiers),
	}, nil
}

// ReprocessArchive re-reads every archived document and reconciles its cases
// using the type of the folder it is filed under. Unreadable files and files
// without identifiers are skipped.
func (p *Pipeline) ReprocessArchive(ctx context.Context) ([]domain.DocumentOutcome, error) {
	if p.archive == nil {
		return nil, errors.New("archive is not configured")
	}

	docs, err := p.archive.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	var outcomes []domain.DocumentOutcome
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		data, err := p.archive.Read(ctx, doc.Path)
		if err != nil {
			p.warn("archived document unreadable", "path", doc.Path, "error", err)
			continue
		}
		analysis, err := p.analyze(data)
		if err != nil {
			p.warn("archived document not analyzable", "path", doc.Path, "error", err)
			continue
		}
		if len(analysis.Identifiers) == 0 {
			p.debug("archived document without identifiers", "path", doc.Path)
			continue
		}

		tally := p.reconciler.ReconcileAll(ctx, analysis.Identifiers, doc.Type, doc.Path, p.now())
		outcomes = append(outcomes, domain.DocumentOutcome{
			URL:         doc.Path,
			Type:        doc.Type,
			Identifiers: len(analysis.Identifiers),
			Written:     tally.Written(),
			New:         tally.New,
			Updated:     tally.Updated,
			Failed:      tally.Failed,
			ArchivePath: doc.Path,
		})
	}

	p.info("archive reprocessed", "documents", len(docs), "processed", len(outcomes))
	return outcomes, nil
}

func (p *Pipeline) analyze(data []byte) (resolution.Analysis, error) {
	if p.extractor == nil {
		return resolution.Analysis{}, errors.New("text extractor is not configured")
	}
	text, err := p.extractor.ExtractText(data)
	if err != nil {
		return resolution.Analysis{}, err
	}
	return p.analyzer.Analyze(text), nil
}

func (p *Pipeline) store(ctx context.Context, url string, t domain.ResolutionType, data []byte, at time.Time) string {
	if p.archive == nil {
		return ""
	}
	path, err := p.archive.Store(ctx, t, data, at)
	if err != nil {
		p.warn("document not archived", "url", url, "type", t, "error", err)
		return ""
	}
	p.debug("document archived", "url", url, "path", path)
	return path
}

func (p *Pipeline) skip(url string, reason domain.SkipReason, err error) *domain.DocumentSkip {
	args := []interface{}{"url", url, "reason", reason, "error", err}
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		args = append(args, "status", statusErr.Status, "headers", statusErr.Headers)
	}
	p.warn("document skipped", args...)
	return &domain.DocumentSkip{URL: url, Reason: reason, Err: err}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
