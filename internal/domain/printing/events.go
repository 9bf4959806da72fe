package printing

import (
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

const AggregateTypePrintJob = "PrintJob"

const (
	EventTypePrintJobCreated       = "PrintJobCreated"
	EventTypePrintJobStatusChanged = "PrintJobStatusChanged"
	EventTypePrintJobCompleted     = "PrintJobCompleted"
	EventTypePrintJobFailed        = "PrintJobFailed"
)

// PrintJobCreatedEvent is published when an invoice print is requested
type PrintJobCreatedEvent struct {
	shared.BaseDomainEvent
	JobID       uuid.UUID `json:"job_id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	PaperSize   PaperSize `json:"paper_size"`
}

func NewPrintJobCreatedEvent(job *PrintJob) *PrintJobCreatedEvent {
	return &PrintJobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCreated, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		OrderNumber:     job.OrderNumber,
		PaperSize:       job.PaperSize,
	}
}

// PrintJobStatusChangedEvent is published on every status transition
type PrintJobStatusChangedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID `json:"job_id"`
	OldStatus JobStatus `json:"old_status"`
	NewStatus JobStatus `json:"new_status"`
}

func NewPrintJobStatusChangedEvent(job *PrintJob, oldStatus, newStatus JobStatus) *PrintJobStatusChangedEvent {
	return &PrintJobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobStatusChanged, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// PrintJobCompletedEvent is published once the PDF is stored
type PrintJobCompletedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID `json:"job_id"`
	OrderID   uuid.UUID `json:"order_id"`
	PDFURL    string    `json:"pdf_url"`
	PageCount int       `json:"page_count"`
}

func NewPrintJobCompletedEvent(job *PrintJob) *PrintJobCompletedEvent {
	return &PrintJobCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCompleted, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		PDFURL:          job.PDFURL,
		PageCount:       job.PageCount,
	}
}

// PrintJobFailedEvent is published when rendering or storage fails
type PrintJobFailedEvent struct {
	shared.BaseDomainEvent
	JobID        uuid.UUID `json:"job_id"`
	OrderID      uuid.UUID `json:"order_id"`
	ErrorMessage string    `json:"error_message"`
}

func NewPrintJobFailedEvent(job *PrintJob) *PrintJobFailedEvent {
	return &PrintJobFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobFailed, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		ErrorMessage:    job.ErrorMessage,
	}
}
