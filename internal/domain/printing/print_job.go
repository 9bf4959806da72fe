package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

const MaxCopies = 100

// PrintJob is one request to render an order's invoice, and where the
// resulting PDF ended up.
type PrintJob struct {
	shared.BaseAggregateRoot
	DocumentType DocType
	OrderID      uuid.UUID
	OrderNumber  int64
	PaperSize    PaperSize
	Status       JobStatus
	Copies       int
	PageCount    int
	PDFPath      string
	PDFURL       string
	FileSize     int64
	ErrorMessage string
	RequestedBy  uuid.UUID
	PrintedAt    *time.Time
}

// NewPrintJob creates a pending invoice job. copies == 0 means one copy.
func NewPrintJob(orderID uuid.UUID, orderNumber int64, paper PaperSize, copies int, requestedBy uuid.UUID) (*PrintJob, error) {
	switch {
	case orderID == uuid.Nil:
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	case orderNumber <= 0:
		return nil, shared.NewDomainError("INVALID_ORDER", "Order number must be positive")
	case !paper.IsValid():
		return nil, ErrInvalidPaperSize
	}
	if copies == 0 {
		copies = 1
	}
	if copies < 1 || copies > MaxCopies {
		return nil, ErrInvalidCopies
	}

	job := &PrintJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocumentType:      DocTypeInvoice,
		OrderID:           orderID,
		OrderNumber:       orderNumber,
		PaperSize:         paper,
		Status:            JobStatusPending,
		Copies:            copies,
		RequestedBy:       requestedBy,
	}
	job.AddDomainEvent(NewPrintJobCreatedEvent(job))
	return job, nil
}

func (j *PrintJob) checkMove(target JobStatus) error {
	if !j.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Print job cannot go from "+j.Status.String()+" to "+target.String())
	}
	return nil
}

// moveTo changes status and returns the one being left
func (j *PrintJob) moveTo(target JobStatus) (JobStatus, error) {
	if err := j.checkMove(target); err != nil {
		return j.Status, err
	}
	from := j.Status
	j.Status = target
	return from, nil
}

func (j *PrintJob) StartRendering() error {
	from, err := j.moveTo(JobStatusRendering)
	if err != nil {
		return err
	}
	j.Bump(NewPrintJobStatusChangedEvent(j, from, JobStatusRendering))
	return nil
}

// Complete records where the rendered PDF was stored
func (j *PrintJob) Complete(path, url string, size int64, pages int) error {
	if err := j.checkMove(JobStatusCompleted); err != nil {
		return err
	}
	if path == "" {
		return shared.NewDomainError("INVALID_PDF_PATH", "PDF path cannot be empty")
	}
	if pages < 1 {
		return shared.NewDomainError("INVALID_PAGE_COUNT", "A rendered invoice has at least one page")
	}

	from, _ := j.moveTo(JobStatusCompleted)
	j.PDFPath, j.PDFURL, j.FileSize, j.PageCount = path, url, size, pages
	printed := time.Now()
	j.PrintedAt = &printed
	j.Bump(NewPrintJobStatusChangedEvent(j, from, JobStatusCompleted), NewPrintJobCompletedEvent(j))
	return nil
}

func (j *PrintJob) Fail(reason string) error {
	from, err := j.moveTo(JobStatusFailed)
	if err != nil {
		return err
	}
	j.ErrorMessage = reason
	j.Bump(NewPrintJobStatusChangedEvent(j, from, JobStatusFailed), NewPrintJobFailedEvent(j))
	return nil
}

func (j *PrintJob) IsCompleted() bool { return j.Status == JobStatusCompleted }
func (j *PrintJob) IsFailed() bool    { return j.Status == JobStatusFailed }
func (j *PrintJob) IsTerminal() bool  { return j.Status.IsTerminal() }
func (j *PrintJob) HasPDF() bool      { return j.PDFPath != "" }
