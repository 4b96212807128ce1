package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
)

// Filesystem stores documents under <root>/<type folder>/<TYPE>_<timestamp>.pdf.
type Filesystem struct {
	root string
}

var _ ports.ArchiveSink = (*Filesystem)(nil)

// NewFilesystem returns a sink rooted at dir.
func NewFilesystem(dir string) *Filesystem {
	return &Filesystem{root: dir}
}

// Init creates the per-type folders.
func (f *Filesystem) Init() error {
	for _, t := range domain.ResolutionTypes {
		if err := os.MkdirAll(filepath.Join(f.root, t.FolderName()), 0o755); err != nil {
			return fmt.Errorf("create archive folder: %w", err)
		}
	}
	return nil
}

// Store writes data into the folder for resolution and returns its path.
func (f *Filesystem) Store(ctx context.Context, resolution domain.ResolutionType, data []byte, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !resolution.Resolved() {
		return "", fmt.Errorf("archive %q: %w", resolution, domain.ErrUnresolved)
	}

	dir := filepath.Join(f.root, resolution.FolderName())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(at.UTC().Format("2006-01-02T15:04:05.000Z"))
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.pdf", resolution.Code(), stamp))

	// Two documents of one type archived within the same millisecond.
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%s_%d.pdf", resolution.Code(), stamp, i))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return path, nil
}

// List returns every archived PDF with the type implied by its folder.
func (f *Filesystem) List(ctx context.Context) ([]ports.ArchivedDocument, error) {
	var docs []ports.ArchivedDocument
	for _, t := range domain.ResolutionTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(f.root, t.FolderName())
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read archive folder %s: %w", dir, err)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			docs = append(docs, ports.ArchivedDocument{Path: filepath.Join(dir, name), Type: t})
		}
	}
	return docs, nil
}

// Read returns the bytes of an archived document.
func (f *Filesystem) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archived document: %w", err)
	}
	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
