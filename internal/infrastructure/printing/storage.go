package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrPDFNotFound is returned by Get when nothing is stored under the path
var ErrPDFNotFound = errors.New("pdf not found")

// PDFStorage keeps rendered invoices. Paths are backend relative keys as
// returned in StoreResult.Path.
type PDFStorage interface {
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is idempotent
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes stored PDFs older than age and reports how many went
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
	GetURL(path string) string
}

// StoreRequest is one rendered PDF for a print job
type StoreRequest struct {
	JobID   uuid.UUID
	PDFData []byte
}

// StoreResult describes where a PDF landed
type StoreResult struct {
	Path string
	URL  string
	Size int64
}

// Validate checks the fields every backend requires
func (r *StoreRequest) Validate() error {
	switch {
	case r == nil:
		return storageError("store request is nil", nil)
	case r.JobID == uuid.Nil:
		return storageError("job ID is required", nil)
	case len(r.PDFData) == 0:
		return storageError("PDF data is empty", nil)
	}
	return nil
}

// ObjectPath returns the partitioned relative path {yyyy}/{mm}/{job}.pdf
func ObjectPath(jobID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%04d/%02d/%s.pdf", at.Year(), int(at.Month()), jobID)
}

func storageError(msg string, cause error) *RenderError {
	return NewRenderError(ErrCodeStorageFailed, msg, cause)
}
