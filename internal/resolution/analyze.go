package resolution

import (
	"ResolutionScanner/internal/domain"
)

// Analysis is what a document's text yields before persistence.
type Analysis struct {
	Type        domain.ResolutionType
	Identifiers []string
	Text        string
}

// Analyzer chains normalization, identifier extraction and classification.
type Analyzer struct {
	Classifier Classifier
	Extractor  Extractor
}

// Analyze runs the text pipeline over raw extracted text.
func (a Analyzer) Analyze(raw string) Analysis {
	text := Normalize(raw)
	return Analysis{
		Type:        a.Classifier.Classify(text),
		Identifiers: a.Extractor.Extract(text),
		Text:        text,
	}
}
