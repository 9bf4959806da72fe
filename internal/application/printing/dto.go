package printing

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
)

// =============================================================================
// Print Job DTOs
// =============================================================================

// PrintInvoiceRequest asks for a stored, persisted print of an order's invoice
type PrintInvoiceRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	PaperSize string    `json:"paper_size" binding:"omitempty,paper_size"`
	Copies    int       `json:"copies" binding:"omitempty,min=1,max=100"`
}

// ListJobsRequest represents a request to list print jobs
type ListJobsRequest struct {
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by" binding:"omitempty,oneof=created_at updated_at order_number status printed_at"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	OrderID   *uuid.UUID `form:"order_id"`
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING RENDERING COMPLETED FAILED"`
	PaperSize string     `form:"paper_size" binding:"omitempty,paper_size"`
}

// PrintJobResponse represents a print job response
type PrintJobResponse struct {
	ID           string     `json:"id"`
	DocumentType string     `json:"document_type"`
	OrderID      string     `json:"order_id"`
	OrderNumber  int64      `json:"order_number"`
	PaperSize    string     `json:"paper_size"`
	Status       string     `json:"status"`
	Copies       int        `json:"copies"`
	PageCount    int        `json:"page_count,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
	PdfURL       string     `json:"pdf_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RequestedBy  string     `json:"requested_by"`
	PrintedAt    *time.Time `json:"printed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CleanupResult reports what a retention sweep removed
type CleanupResult struct {
	JobsDeleted  int64 `json:"jobs_deleted"`
	FilesDeleted int   `json:"files_deleted"`
}

// =============================================================================
// Rendering DTOs
// =============================================================================

// RenderedInvoice is an invoice PDF produced on the fly
type RenderedInvoice struct {
	Filename  string
	PDFData   []byte
	PageCount int
	Cached    bool
}

// JobDownload streams the stored PDF of a completed job. The caller closes Body.
type JobDownload struct {
	Filename string
	Size     int64
	Body     io.ReadCloser
}

// PreviewRequest lays out either a stored order or an ad hoc snapshot
type PreviewRequest struct {
	OrderID   *uuid.UUID         `json:"order_id"`
	Order     *invoice.OrderData `json:"order"`
	PaperSize string             `json:"paper_size" binding:"omitempty,paper_size"`
	Title     string             `json:"title" binding:"max=100"`
	Footer    string             `json:"footer" binding:"max=200"`
}

// =============================================================================
// Reference Data DTOs
// =============================================================================

// PaperSizeResponse represents a paper size option
type PaperSizeResponse struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	WidthMM     float64 `json:"width_mm"`
	HeightMM    float64 `json:"height_mm"`
	Default     bool    `json:"default"`
}

func toJobResponse(j *printing.PrintJob) *PrintJobResponse {
	return &PrintJobResponse{
		ID:           j.ID.String(),
		DocumentType: j.DocumentType.String(),
		OrderID:      j.OrderID.String(),
		OrderNumber:  j.OrderNumber,
		PaperSize:    j.PaperSize.String(),
		Status:       j.Status.String(),
		Copies:       j.Copies,
		PageCount:    j.PageCount,
		FileSize:     j.FileSize,
		PdfURL:       j.PDFURL,
		ErrorMessage: j.ErrorMessage,
		RequestedBy:  j.RequestedBy.String(),
		PrintedAt:    j.PrintedAt,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}
