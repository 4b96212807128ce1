package pdftext

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/infrastructure/pdftext/pdftexttest"
	"ResolutionScanner/internal/resolution"
)

func TestExtractTextEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := New().ExtractText(nil); !errors.Is(err, domain.ErrNoTextLayer) {
		t.Fatalf("expected ErrNoTextLayer, got %v", err)
	}
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := New().ExtractText([]byte("<html>not a pdf</html>")); err == nil {
		t.Fatal("expected error for non-pdf input")
	}
}

func TestExtractTextNoTextLayer(t *testing.T) {
	t.Parallel()

	if _, err := New().ExtractText(pdftexttest.Build()); !errors.Is(err, domain.ErrNoTextLayer) {
		t.Fatalf("expected ErrNoTextLayer, got %v", err)
	}
}

func TestExtractTextKeepsTableColumnsApart(t *testing.T) {
	t.Parallel()

	data := pdftexttest.Build(
		pdftexttest.Run{X: 72, Y: 740, Text: "RESOLUCIÓN DE CONCESIÓN"},
		pdftexttest.Run{X: 72, Y: 720, Text: "Véase el expediente 2023/C022/00000999"},
		pdftexttest.Run{X: 72, Y: 700, Text: "2024/C022/00000123"},
		pdftexttest.Run{X: 200, Y: 700, Text: "01/01/2024"},
		pdftexttest.Run{X: 300, Y: 700, Text: "500,00 €"},
	)

	text, err := New().ExtractText(data)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	want := []string{
		"RESOLUCIÓN DE CONCESIÓN",
		"Véase el expediente 2023/C022/00000999",
		"2024/C022/00000123 01/01/2024 500,00 €",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}

	// A table row wins over the stray reference above it.
	analyzer := resolution.Analyzer{Extractor: resolution.Extractor{Validator: resolution.Validator{
		Now: func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) },
	}}}
	got := analyzer.Analyze(text)
	if got.Type != domain.ResolutionConcession {
		t.Fatalf("unexpected type %q", got.Type)
	}
	if !reflect.DeepEqual(got.Identifiers, []string{"2024/C022/00000123"}) {
		t.Fatalf("identifiers = %v", got.Identifiers)
	}
}
