package printing

import (
	"slices"

	"github.com/murdhanno/backend/internal/domain/printing/invoice"
)

// DocType is what a print job produces. Only invoices exist today.
type DocType string

const DocTypeInvoice DocType = "INVOICE"

func (d DocType) IsValid() bool  { return d == DocTypeInvoice }
func (d DocType) String() string { return string(d) }

// PaperSize is the label stock an invoice is printed on
type PaperSize string

const (
	PaperSizeLabel4x6    PaperSize = "LABEL_4X6"
	PaperSizeLabel100x70 PaperSize = "LABEL_100X70"
)

type paperSpec struct {
	label    string
	widthMM  float64
	heightMM float64
	geometry invoice.PageGeometry
}

var paperSpecs = map[PaperSize]paperSpec{
	PaperSizeLabel4x6:    {"4 x 6 in label", 101.6, 152.4, invoice.VariantA},
	PaperSizeLabel100x70: {"100 x 70 mm label", 100, 70, invoice.VariantB},
}

// spec falls back to the 4x6 label for unknown sizes
func (p PaperSize) spec() paperSpec {
	if s, ok := paperSpecs[p]; ok {
		return s
	}
	return paperSpecs[PaperSizeLabel4x6]
}

func (p PaperSize) IsValid() bool {
	_, ok := paperSpecs[p]
	return ok
}

func (p PaperSize) String() string { return string(p) }

// DisplayName is the label shown in the paper size picker
func (p PaperSize) DisplayName() string {
	if !p.IsValid() {
		return string(p)
	}
	return p.spec().label
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	s := p.spec()
	return s.widthMM, s.heightMM
}

// Geometry is the invoice layout used on this stock
func (p PaperSize) Geometry() invoice.PageGeometry { return p.spec().geometry }

// ParsePaperSize validates a client supplied paper size. Empty selects def.
func ParsePaperSize(s string, def PaperSize) (PaperSize, error) {
	if s == "" {
		return def, nil
	}
	if p := PaperSize(s); p.IsValid() {
		return p, nil
	}
	return "", ErrInvalidPaperSize
}

// AllPaperSizes lists the supported stocks, smallest first
func AllPaperSizes() []PaperSize {
	return []PaperSize{PaperSizeLabel4x6, PaperSizeLabel100x70}
}

// JobStatus is a print job's place in PENDING -> RENDERING -> COMPLETED,
// with FAILED reachable from either non-terminal state.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRendering JobStatus = "RENDERING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:   {JobStatusRendering, JobStatusFailed},
	JobStatusRendering: {JobStatusCompleted, JobStatusFailed},
	JobStatusCompleted: nil,
	JobStatusFailed:    nil,
}

func (s JobStatus) IsValid() bool {
	_, ok := jobTransitions[s]
	return ok
}

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) IsTerminal() bool { return s.IsValid() && len(jobTransitions[s]) == 0 }

func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	return slices.Contains(jobTransitions[s], target)
}
