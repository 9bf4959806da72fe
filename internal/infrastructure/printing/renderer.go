package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"github.com/murdhanno/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MaxCopies bounds the copies rendered into one document
const MaxCopies = 100

// RenderRequest contains the parameters for rendering an invoice to PDF
type RenderRequest struct {
	// Order is the snapshot printed on the invoice
	Order invoice.OrderData
	// PaperSize selects the page geometry
	PaperSize printing.PaperSize
	// Copies repeats the invoice, each copy starting on a fresh page. Zero means one.
	Copies int
	// Title and Footer override the renderer defaults when set
	Title  string
	Footer string
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PreviewResult is the draw list of an invoice without the PDF encoding
type PreviewResult struct {
	Geometry  invoice.PageGeometry `json:"geometry"`
	PageCount int                  `json:"pageCount"`
	ItemRows  int                  `json:"itemRows"`
	Ops       []invoice.DrawOp     `json:"ops"`
}

// PDFRenderer defines the interface for rendering invoices to PDF
type PDFRenderer interface {
	// Render lays out the invoice and encodes it as a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Preview lays out the invoice and returns the recorded draw operations
	Preview(ctx context.Context, req *RenderRequest) (*PreviewResult, error)
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeOutputFailed  = "OUTPUT_FAILED"
	ErrCodeStorageFailed = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvoiceRenderer renders invoices with the layout engine onto fpdf pages
type InvoiceRenderer struct {
	title   string
	footer  string
	metrics *telemetry.InvoiceMetrics
	logger  *zap.Logger
}

// RendererOption configures an InvoiceRenderer
type RendererOption func(*InvoiceRenderer)

// WithDefaultTexts sets the brand title and closing line used when a request
// does not carry its own
func WithDefaultTexts(title, footer string) RendererOption {
	return func(r *InvoiceRenderer) {
		r.title = title
		r.footer = footer
	}
}

// WithRendererMetrics records render counts, durations and page counts
func WithRendererMetrics(m *telemetry.InvoiceMetrics) RendererOption {
	return func(r *InvoiceRenderer) {
		r.metrics = m
	}
}

// WithRendererLogger sets the logger
func WithRendererLogger(logger *zap.Logger) RendererOption {
	return func(r *InvoiceRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewInvoiceRenderer creates a renderer
func NewInvoiceRenderer(opts ...RendererOption) *InvoiceRenderer {
	r := &InvoiceRenderer{
		title:  invoice.DefaultTitle,
		footer: invoice.DefaultFooter,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out the invoice and returns the encoded PDF
func (r *InvoiceRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := r.validate(ctx, req); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceRenderer", "Render",
		telemetry.WithAttribute(telemetry.SpanAttrOrderNumber, req.Order.ID),
		telemetry.WithAttribute(telemetry.SpanAttrPaperSize, req.PaperSize.String()),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Order.Items)),
	)
	defer span.End()

	start := time.Now()
	var (
		result *RenderResult
		err    error
	)
	labels := telemetry.OperationLabels("invoice_render", map[string]string{
		telemetry.ProfilingLabelPaperSize: req.PaperSize.String(),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(context.Context) {
		result, err = r.render(req)
	})
	elapsed := time.Since(start)

	pages := 0
	if result != nil {
		pages = result.PageCount
		result.RenderDuration = elapsed
	}
	r.metrics.RecordRender(ctx, req.PaperSize.String(), elapsed, pages, err)

	if err != nil {
		telemetry.RecordError(span, err)
		r.logger.Error("invoice render failed",
			zap.Int64("order_number", req.Order.ID),
			zap.String("paper_size", req.PaperSize.String()),
			zap.Error(err))
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPageCount, result.PageCount,
		telemetry.SpanAttrPDFBytes, len(result.PDFData),
	)
	telemetry.SetOK(span)
	r.logger.Debug("invoice rendered",
		zap.Int64("order_number", req.Order.ID),
		zap.String("paper_size", req.PaperSize.String()),
		zap.Int("pages", result.PageCount),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", elapsed))

	return result, nil
}

func (r *InvoiceRenderer) render(req *RenderRequest) (result *RenderResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = NewRenderError(ErrCodeRenderFailed, "layout aborted", fmt.Errorf("%v", p))
		}
	}()

	doc := NewFpdfDocument(req.PaperSize.Geometry(), r.titleFor(req))
	for n := 0; n < copiesOf(req); n++ {
		if n > 0 {
			doc.AddPage()
		}
		invoice.Layout(req.Order, req.PaperSize.Geometry(), doc, doc, r.options(req)...)
	}
	if err := doc.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "pdf document error", err)
	}

	pages := doc.PageCount()
	data, err := doc.Bytes()
	if err != nil {
		return nil, NewRenderError(ErrCodeOutputFailed, "failed to encode PDF", err)
	}
	return &RenderResult{PDFData: data, PageCount: pages}, nil
}

// Preview runs the engine against a recorder. Text is measured with the
// same fpdf metrics Render uses, so the draw list matches the PDF.
func (r *InvoiceRenderer) Preview(ctx context.Context, req *RenderRequest) (*PreviewResult, error) {
	if err := r.validate(ctx, req); err != nil {
		return nil, err
	}

	_, span := telemetry.StartServiceSpan(ctx, "InvoiceRenderer", "Preview",
		telemetry.WithAttribute(telemetry.SpanAttrPaperSize, req.PaperSize.String()),
	)
	defer span.End()

	geo := req.PaperSize.Geometry()
	metrics := NewFpdfDocument(geo, "")
	rec := invoice.NewRecorder()
	res := invoice.Layout(req.Order, geo, metrics, rec, r.options(req)...)

	telemetry.SetAttributes(span, telemetry.SpanAttrPageCount, res.Pages)
	telemetry.SetOK(span)
	return &PreviewResult{
		Geometry:  geo,
		PageCount: res.Pages,
		ItemRows:  res.ItemRows,
		Ops:       rec.Ops,
	}, nil
}

func (r *InvoiceRenderer) validate(ctx context.Context, req *RenderRequest) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeRenderFailed, "operation cancelled", err)
	}
	if req == nil {
		return NewRenderError(ErrCodeInvalidInput, "render request is nil", nil)
	}
	if !req.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidInput, fmt.Sprintf("unsupported paper size %q", req.PaperSize), nil)
	}
	if req.Copies < 0 || req.Copies > MaxCopies {
		return NewRenderError(ErrCodeInvalidInput, fmt.Sprintf("copies must be between 1 and %d", MaxCopies), nil)
	}
	return nil
}

func (r *InvoiceRenderer) titleFor(req *RenderRequest) string {
	if req.Title != "" {
		return req.Title
	}
	return r.title
}

func (r *InvoiceRenderer) options(req *RenderRequest) []invoice.Option {
	footer := r.footer
	if req.Footer != "" {
		footer = req.Footer
	}
	return []invoice.Option{invoice.WithTitle(r.titleFor(req)), invoice.WithFooter(footer)}
}

func copiesOf(req *RenderRequest) int {
	if req.Copies < 1 {
		return 1
	}
	return req.Copies
}

var _ PDFRenderer = (*InvoiceRenderer)(nil)
