package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ResolutionScanner/internal/domain"
)

func TestStoreListRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	fs := NewFilesystem(root)
	if err := fs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, rt := range domain.ResolutionTypes {
		if _, err := os.Stat(filepath.Join(root, rt.FolderName())); err != nil {
			t.Fatalf("folder for %s missing: %v", rt, err)
		}
	}

	at := time.Date(2024, 6, 1, 12, 30, 45, 123000000, time.UTC)
	path, err := fs.Store(ctx, domain.ResolutionConcession, []byte("first"), at)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	want := filepath.Join(root, "Resoluciones de Concesión", "CONCESION_2024-06-01T12-30-45-123Z.pdf")
	if path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}

	second, err := fs.Store(ctx, domain.ResolutionConcession, []byte("second"), at)
	if err != nil {
		t.Fatalf("Store duplicate stamp: %v", err)
	}
	if second == path {
		t.Fatal("second document overwrote the first")
	}

	if _, err := fs.Store(ctx, domain.ResolutionInadmission, []byte("third"), at); err != nil {
		t.Fatalf("Store inadmission: %v", err)
	}

	docs, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 archived documents, got %d", len(docs))
	}
	if docs[0].Type != domain.ResolutionConcession || docs[2].Type != domain.ResolutionInadmission {
		t.Fatalf("unexpected types: %+v", docs)
	}

	data, err := fs.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "first" {
		t.Fatalf("Read = %q", data)
	}
}

func TestStoreRejectsUnresolved(t *testing.T) {
	t.Parallel()

	fs := NewFilesystem(t.TempDir())
	_, err := fs.Store(context.Background(), domain.ResolutionUnresolved, []byte("x"), time.Now())
	if !errors.Is(err, domain.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestListSkipsMissingFoldersAndOtherFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, domain.ResolutionWithdrawal.FolderName())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "DESISTIMIENTO_a.PDF"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := NewFilesystem(root).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].Type != domain.ResolutionWithdrawal {
		t.Fatalf("unexpected listing: %+v", docs)
	}
}
