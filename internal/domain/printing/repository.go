package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

// PrintJobRepository defines the interface for print job persistence
type PrintJobRepository interface {
	// FindByID returns shared.ErrNotFound when no job matches
	FindByID(ctx context.Context, id uuid.UUID) (*PrintJob, error)

	// FindAll lists jobs newest first
	FindAll(ctx context.Context, filter PrintJobFilter) ([]PrintJob, error)

	// Count returns the total count of jobs matching the filter
	Count(ctx context.Context, filter PrintJobFilter) (int64, error)

	// FindByOrder lists every job printed for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]PrintJob, error)

	// Save inserts or updates a job
	Save(ctx context.Context, job *PrintJob) error

	// DeleteOlderThan removes terminal jobs created before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrintJobFilter extends the standard filter with print job specific criteria
type PrintJobFilter struct {
	shared.Filter
	OrderID     *uuid.UUID
	Status      *JobStatus
	PaperSize   *PaperSize
	RequestedBy *uuid.UUID
}
