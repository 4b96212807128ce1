package domain

import (
	"errors"
	"fmt"
	"time"
)

// ResolutionType labels a published resolution document. The string value is
// what the store keeps in tipo_resolucion.
type ResolutionType string

const (
	ResolutionUnresolved        ResolutionType = ""
	ResolutionConcession        ResolutionType = "concesion"
	ResolutionWithdrawal        ResolutionType = "desistimiento"
	ResolutionExpressWithdrawal ResolutionType = "desistimiento_expreso"
	ResolutionInadmission       ResolutionType = "inadmision"
)

// ResolutionTypes lists every resolved category in archive order.
var ResolutionTypes = []ResolutionType{
	ResolutionConcession,
	ResolutionWithdrawal,
	ResolutionExpressWithdrawal,
	ResolutionInadmission,
}

var folderNames = map[ResolutionType]string{
	ResolutionConcession:        "Resoluciones de Concesión",
	ResolutionWithdrawal:        "Resoluciones de Desistidos",
	ResolutionExpressWithdrawal: "Resoluciones de Desistimiento Expreso",
	ResolutionInadmission:       "Resoluciones de Inadmitidos",
}

// Resolved reports whether the type is one of the known categories.
func (t ResolutionType) Resolved() bool {
	_, ok := folderNames[t]
	return ok
}

// FolderName is the archive folder holding documents of this type.
func (t ResolutionType) FolderName() string {
	return folderNames[t]
}

// Code is the upper-case label used in archived file names.
func (t ResolutionType) Code() string {
	switch t {
	case ResolutionConcession:
		return "CONCESION"
	case ResolutionWithdrawal:
		return "DESISTIMIENTO"
	case ResolutionExpressWithdrawal:
		return "DESISTIMIENTO_EXPRESO"
	case ResolutionInadmission:
		return "INADMISION"
	default:
		return "UNRESOLVED"
	}
}

// ParseResolutionType maps a stored label back to its type.
func ParseResolutionType(value string) (ResolutionType, bool) {
	t := ResolutionType(value)
	return t, t.Resolved()
}

// CaseRecord is the persisted unit keyed by the case identifier.
type CaseRecord struct {
	Identifier  string
	Type        ResolutionType
	SourceURL   string
	ProcessedAt time.Time
}

// UploadSource is recorded as SourceURL for manually uploaded documents.
const UploadSource = "subido_manualmente"

// SkipReason explains why a document produced no outcome.
type SkipReason string

const (
	SkipFetch         SkipReason = "fetch"
	SkipNotPDF        SkipReason = "not_pdf"
	SkipExtract       SkipReason = "extract"
	SkipUnresolved    SkipReason = "unresolved"
	SkipNoIdentifiers SkipReason = "no_identifiers"
)

// DocumentSkip records a document that was absorbed without an outcome.
type DocumentSkip struct {
	URL    string
	Reason SkipReason
	Err    error
}

// DocumentOutcome is the per-document result of a batch run.
type DocumentOutcome struct {
	URL         string
	Type        ResolutionType
	Identifiers int
	Written     int
	New         int
	Updated     int
	Failed      int
	ArchivePath string
}

// BatchSummary aggregates a full discovery-driven run.
type BatchSummary struct {
	Total     int
	Processed int
	Outcomes  []DocumentOutcome
	Skipped   []DocumentSkip
}

// UploadOutcome is returned for a single uploaded document.
type UploadOutcome struct {
	Type    ResolutionType
	Written int
	New     int
	Updated int
	Total   int
}

var (
	ErrNotPDF           = errors.New("document is not a pdf")
	ErrNoTextLayer      = errors.New("document has no text layer")
	ErrNotFound         = errors.New("case record not found")
	ErrUnresolved       = errors.New("resolution type could not be determined")
	ErrNoIdentifiers    = errors.New("document contains no valid case identifiers")
	ErrDocumentTooLarge = errors.New("document exceeds the size limit")
)

// DiscoveryError wraps a failure to read the listing page. It aborts a batch.
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	return "discover links on " + e.URL + ": " + e.Err.Error()
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response from the publisher.
type StatusError struct {
	URL     string
	Status  string
	Code    int
	Headers map[string][]string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %s", e.URL, e.Status)
}
