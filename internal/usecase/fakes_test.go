package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
)

type memRepository struct {
	mu      sync.Mutex
	records map[string]domain.CaseRecord
	findErr map[string]error
}

func newMemRepository() *memRepository {
	return &memRepository{records: map[string]domain.CaseRecord{}, findErr: map[string]error{}}
}

func (r *memRepository) Find(_ context.Context, id string) (domain.CaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.findErr[id]; err != nil {
		return domain.CaseRecord{}, err
	}
	rec, ok := r.records[id]
	if !ok {
		return domain.CaseRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (r *memRepository) Insert(_ context.Context, rec domain.CaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.Identifier]; ok {
		return fmt.Errorf("duplicate key %s", rec.Identifier)
	}
	r.records[rec.Identifier] = rec
	return nil
}

func (r *memRepository) Update(_ context.Context, rec domain.CaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.Identifier]; !ok {
		return domain.ErrNotFound
	}
	r.records[rec.Identifier] = rec
	return nil
}

func (r *memRepository) get(id string) (domain.CaseRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	return rec, ok
}

func (r *memRepository) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type stubSource struct {
	links []string
	err   error
	calls int
}

func (s *stubSource) Discover(context.Context) ([]string, error) {
	s.calls++
	return s.links, s.err
}

// stubFetcher serves documents whose body is the text the extractor returns.
type stubFetcher struct {
	docs map[string]string
	errs map[string]error
}

func (f stubFetcher) Fetch(_ context.Context, url string) (ports.RawDocument, error) {
	if err := f.errs[url]; err != nil {
		return ports.RawDocument{}, err
	}
	text, ok := f.docs[url]
	if !ok {
		return ports.RawDocument{}, &domain.StatusError{URL: url, Status: "404 Not Found", Code: 404}
	}
	return ports.RawDocument{URL: url, ContentType: "application/pdf", Data: []byte(text)}, nil
}

type plainTextExtractor struct{}

func (plainTextExtractor) ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrNoTextLayer
	}
	return string(data), nil
}

type memArchive struct {
	docs  []ports.ArchivedDocument
	files map[string][]byte
}

func newMemArchive() *memArchive {
	return &memArchive{files: map[string][]byte{}}
}

func (a *memArchive) put(t domain.ResolutionType, name string, data []byte) {
	path := t.FolderName() + "/" + name
	a.docs = append(a.docs, ports.ArchivedDocument{Path: path, Type: t})
	a.files[path] = data
}

func (a *memArchive) Store(_ context.Context, t domain.ResolutionType, data []byte, at time.Time) (string, error) {
	name := fmt.Sprintf("%s_%d.pdf", t.Code(), len(a.docs))
	a.put(t, name, data)
	return t.FolderName() + "/" + name, nil
}

func (a *memArchive) List(context.Context) ([]ports.ArchivedDocument, error) {
	return a.docs, nil
}

func (a *memArchive) Read(_ context.Context, path string) ([]byte, error) {
	data, ok := a.files[path]
	if !ok {
		return nil, fmt.Errorf("no archived file %s", path)
	}
	return data, nil
}

type captureScheduler struct {
	job     func(time.Time)
	stopped bool
}

func (s *captureScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.job = job
	return nil
}

func (s *captureScheduler) Stop(context.Context) error {
	s.stopped = true
	return nil
}
