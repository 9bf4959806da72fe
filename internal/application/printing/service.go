package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	tradeapp "github.com/murdhanno/backend/internal/application/trade"
	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/murdhanno/backend/internal/infrastructure/cache"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	infra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"github.com/murdhanno/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const serviceName = "InvoicePrintService"

// OrderFinder loads an order the actor is allowed to see
type OrderFinder interface {
	FindOrder(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*trade.Order, error)
}

// Config holds the print settings taken from the invoice configuration
type Config struct {
	DefaultPaperSize printing.PaperSize
	CacheTTL         time.Duration
	JobRetention     time.Duration
}

// InvoicePrintService renders invoices, records print jobs and serves
// their stored PDFs
type InvoicePrintService struct {
	orders         OrderFinder
	jobRepo        printing.PrintJobRepository
	pdfRenderer    infra.PDFRenderer
	pdfStorage     infra.PDFStorage
	invoiceCache   cache.InvoiceCache
	eventPublisher shared.EventPublisher
	metrics        *telemetry.InvoiceMetrics
	cfg            Config
	now            func() time.Time
}

// NewInvoicePrintService creates a new InvoicePrintService
func NewInvoicePrintService(
	orders OrderFinder,
	jobRepo printing.PrintJobRepository,
	pdfRenderer infra.PDFRenderer,
	pdfStorage infra.PDFStorage,
	cfg Config,
) *InvoicePrintService {
	if !cfg.DefaultPaperSize.IsValid() {
		cfg.DefaultPaperSize = printing.PaperSizeLabel4x6
	}
	return &InvoicePrintService{
		orders:      orders,
		jobRepo:     jobRepo,
		pdfRenderer: pdfRenderer,
		pdfStorage:  pdfStorage,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetCache enables caching of on-the-fly renders
func (s *InvoicePrintService) SetCache(c cache.InvoiceCache) {
	s.invoiceCache = c
}

// SetEventPublisher sets the event publisher for job lifecycle events
func (s *InvoicePrintService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics attaches business metrics
func (s *InvoicePrintService) SetMetrics(m *telemetry.InvoiceMetrics) {
	s.metrics = m
}

// =============================================================================
// Rendering
// =============================================================================

// RenderInvoice renders an order's invoice without recording a job. Results
// are cached per order version and paper size.
func (s *InvoicePrintService) RenderInvoice(ctx context.Context, actor shared.Actor, orderID uuid.UUID, paperSize string) (out *RenderedInvoice, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "RenderInvoice",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	paper, err := printing.ParsePaperSize(paperSize, s.cfg.DefaultPaperSize)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, order.Number,
		telemetry.SpanAttrPaperSize, paper.String(),
	)

	key := cache.NewInvoiceKey(order.ID, paper.String(), order.UpdatedAt)
	if cached := s.cachedRender(ctx, key); cached != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
		return &RenderedInvoice{
			Filename:  invoiceFilename(order.Number),
			PDFData:   cached.PDFData,
			PageCount: cached.PageCount,
			Cached:    true,
		}, nil
	}

	result, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		Order:     tradeapp.ToInvoiceData(order),
		PaperSize: paper,
	})
	if err != nil {
		return nil, renderFailure(err)
	}

	if s.invoiceCache != nil {
		entry := &cache.CachedInvoice{PDFData: result.PDFData, PageCount: result.PageCount}
		if err := s.invoiceCache.Set(ctx, key, entry, s.cfg.CacheTTL); err != nil {
			logger.L(ctx).Warn("failed to cache invoice", zap.String("key", key.String()), zap.Error(err))
		}
	}

	return &RenderedInvoice{
		Filename:  invoiceFilename(order.Number),
		PDFData:   result.PDFData,
		PageCount: result.PageCount,
	}, nil
}

func (s *InvoicePrintService) cachedRender(ctx context.Context, key cache.InvoiceKey) *cache.CachedInvoice {
	if s.invoiceCache == nil || s.cfg.CacheTTL <= 0 {
		return nil
	}
	cached, hit, err := s.invoiceCache.Get(ctx, key)
	if err != nil {
		logger.L(ctx).Warn("invoice cache lookup failed", zap.String("key", key.String()), zap.Error(err))
		return nil
	}
	s.metrics.RecordCacheLookup(ctx, hit)
	if !hit {
		return nil
	}
	return cached
}

// Preview lays out an invoice and returns its draw operations. The data
// comes from a stored order when OrderID is set, otherwise from req.Order.
func (s *InvoicePrintService) Preview(ctx context.Context, actor shared.Actor, req PreviewRequest) (*infra.PreviewResult, error) {
	paper, err := printing.ParsePaperSize(req.PaperSize, s.cfg.DefaultPaperSize)
	if err != nil {
		return nil, err
	}

	var data invoice.OrderData
	switch {
	case req.OrderID != nil:
		order, err := s.orders.FindOrder(ctx, actor, *req.OrderID)
		if err != nil {
			return nil, err
		}
		data = tradeapp.ToInvoiceData(order)
	case req.Order != nil:
		data = *req.Order
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Either order_id or order is required")
	}

	result, err := s.pdfRenderer.Preview(ctx, &infra.RenderRequest{
		Order:     data,
		PaperSize: paper,
		Title:     req.Title,
		Footer:    req.Footer,
	})
	if err != nil {
		return nil, renderFailure(err)
	}
	return result, nil
}

// =============================================================================
// Print Jobs
// =============================================================================

// PrintInvoice renders the requested copies into one PDF, stores it and
// records the attempt as a print job. A failed render or store leaves the
// job in FAILED state.
func (s *InvoicePrintService) PrintInvoice(ctx context.Context, actor shared.Actor, req PrintInvoiceRequest) (resp *PrintJobResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "PrintInvoice",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, req.OrderID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	paper, err := printing.ParsePaperSize(req.PaperSize, s.cfg.DefaultPaperSize)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindOrder(ctx, actor, req.OrderID)
	if err != nil {
		return nil, err
	}

	job, err := printing.NewPrintJob(order.ID, order.Number, paper, req.Copies, actor.UserID)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrJobID, job.ID.String(),
		telemetry.SpanAttrPaperSize, paper.String(),
	)

	// Save job in pending state
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save print job: %w", err)
	}

	if err := job.StartRendering(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	pdfResult, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		Order:     tradeapp.ToInvoiceData(order),
		PaperSize: paper,
		Copies:    job.Copies,
	})
	if err != nil {
		s.fail(ctx, job, "PDF generation failed. Please try again later.", err)
		return nil, renderFailure(err)
	}

	stored, err := s.pdfStorage.Store(ctx, &infra.StoreRequest{
		JobID:   job.ID,
		PDFData: pdfResult.PDFData,
	})
	if err != nil {
		s.fail(ctx, job, "Failed to save PDF file. Please try again later.", err)
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	if err := job.Complete(stored.Path, stored.URL, stored.Size, pdfResult.PageCount); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	s.metrics.RecordPrintJob(ctx, paper.String(), job.Status.String())
	telemetry.SetAttributes(span, telemetry.SpanAttrPageCount, job.PageCount)
	logger.L(ctx).Info("invoice printed",
		zap.String("job_id", job.ID.String()),
		zap.Int64("order_number", order.Number),
		zap.String("paper_size", paper.String()),
		zap.Int("copies", job.Copies),
		zap.Int("pages", job.PageCount),
	)
	s.publish(ctx, job)

	return toJobResponse(job), nil
}

func (s *InvoicePrintService) fail(ctx context.Context, job *printing.PrintJob, msg string, cause error) {
	logger.L(ctx).Error("print job failed",
		zap.String("job_id", job.ID.String()),
		zap.Int64("order_number", job.OrderNumber),
		zap.Error(cause),
	)
	_ = job.Fail(msg)
	if err := s.jobRepo.Save(ctx, job); err != nil {
		logger.L(ctx).Warn("failed to record job failure", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
	s.metrics.RecordPrintJob(ctx, job.PaperSize.String(), job.Status.String())
	s.publish(ctx, job)
}

// GetJob retrieves a print job by ID
func (s *InvoicePrintService) GetJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*PrintJobResponse, error) {
	job, err := s.findJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	return toJobResponse(job), nil
}

func (s *InvoicePrintService) findJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*printing.PrintJob, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, printing.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if !actor.CanAccess(job.RequestedBy) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied")
	}
	return job, nil
}

// ListJobs retrieves a paginated list of print jobs. Non-admin users only
// see the jobs they requested.
func (s *InvoicePrintService) ListJobs(ctx context.Context, actor shared.Actor, req ListJobsRequest) (shared.Paginated[PrintJobResponse], error) {
	filter := printing.PrintJobFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		OrderID:     req.OrderID,
		RequestedBy: actor.Scope(),
	}
	filter.Normalize()
	if req.Status != "" {
		status := printing.JobStatus(req.Status)
		if !status.IsValid() {
			return shared.Paginated[PrintJobResponse]{}, shared.NewDomainError("INVALID_STATUS", "Unknown job status: "+req.Status)
		}
		filter.Status = &status
	}
	if req.PaperSize != "" {
		paper, err := printing.ParsePaperSize(req.PaperSize, "")
		if err != nil {
			return shared.Paginated[PrintJobResponse]{}, err
		}
		filter.PaperSize = &paper
	}

	jobs, err := s.jobRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[PrintJobResponse]{}, fmt.Errorf("failed to list jobs: %w", err)
	}
	total, err := s.jobRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[PrintJobResponse]{}, fmt.Errorf("failed to count jobs: %w", err)
	}

	items := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		items[i] = *toJobResponse(&jobs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetJobsByOrder lists every job printed for an order the actor can see
func (s *InvoicePrintService) GetJobsByOrder(ctx context.Context, actor shared.Actor, orderID uuid.UUID) ([]PrintJobResponse, error) {
	if _, err := s.orders.FindOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	result := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		result[i] = *toJobResponse(&jobs[i])
	}
	return result, nil
}

// DownloadJob opens the stored PDF of a completed job
func (s *InvoicePrintService) DownloadJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*JobDownload, error) {
	job, err := s.findJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsCompleted() || !job.HasPDF() {
		return nil, printing.ErrPDFNotReady
	}

	body, err := s.pdfStorage.Get(ctx, job.PDFPath)
	if err != nil {
		if errors.Is(err, infra.ErrPDFNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Stored PDF is no longer available")
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &JobDownload{
		Filename: invoiceFilename(job.OrderNumber),
		Size:     job.FileSize,
		Body:     body,
	}, nil
}

// CleanupExpired removes finished jobs and stored PDFs past the retention
// period. A zero retention keeps everything.
func (s *InvoicePrintService) CleanupExpired(ctx context.Context) (*CleanupResult, error) {
	if s.cfg.JobRetention <= 0 {
		return &CleanupResult{}, nil
	}

	cutoff := s.now().Add(-s.cfg.JobRetention)
	jobs, err := s.jobRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired jobs: %w", err)
	}
	files, err := s.pdfStorage.CleanupOlderThan(ctx, s.cfg.JobRetention)
	if err != nil {
		return nil, fmt.Errorf("failed to clean up stored PDFs: %w", err)
	}

	logger.L(ctx).Info("print retention sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int64("jobs_deleted", jobs),
		zap.Int("files_deleted", files),
	)
	return &CleanupResult{JobsDeleted: jobs, FilesDeleted: files}, nil
}

// =============================================================================
// Reference Data
// =============================================================================

// GetPaperSizes returns all available paper sizes
func (s *InvoicePrintService) GetPaperSizes() []PaperSizeResponse {
	paperSizes := printing.AllPaperSizes()
	result := make([]PaperSizeResponse, len(paperSizes))
	for i, ps := range paperSizes {
		w, h := ps.Dimensions()
		result[i] = PaperSizeResponse{
			Code:        ps.String(),
			DisplayName: ps.DisplayName(),
			WidthMM:     w,
			HeightMM:    h,
			Default:     ps == s.cfg.DefaultPaperSize,
		}
	}
	return result
}

// =============================================================================
// Helper Functions
// =============================================================================

func (s *InvoicePrintService) publish(ctx context.Context, job *printing.PrintJob) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, job); err != nil {
		logger.L(ctx).Warn("failed to publish print job events",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

func renderFailure(err error) error {
	var renderErr *infra.RenderError
	if errors.As(err, &renderErr) {
		return shared.NewDomainError(renderErr.Code, renderErr.Message)
	}
	return fmt.Errorf("failed to render PDF: %w", err)
}

func invoiceFilename(number int64) string {
	return fmt.Sprintf("invoice-%d.pdf", number)
}
