package printing_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/application/printing"
	domain "github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/murdhanno/backend/internal/infrastructure/cache"
	infra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockOrderFinder struct {
	mock.Mock
}

func (m *MockOrderFinder) FindOrder(ctx context.Context, actor shared.Actor, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

type MockJobRepository struct {
	mock.Mock
	saved []domain.JobStatus
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrintJob), args.Error(1)
}

func (m *MockJobRepository) FindAll(ctx context.Context, filter domain.PrintJobFilter) ([]domain.PrintJob, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PrintJob), args.Error(1)
}

func (m *MockJobRepository) Count(ctx context.Context, filter domain.PrintJobFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.PrintJob, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PrintJob), args.Error(1)
}

func (m *MockJobRepository) Save(ctx context.Context, job *domain.PrintJob) error {
	m.saved = append(m.saved, job.Status)
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockRenderer) Preview(ctx context.Context, req *infra.RenderRequest) (*infra.PreviewResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.PreviewResult), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// =============================================================================
// Fixtures
// =============================================================================

var (
	ownerID   = uuid.MustParse("6f1c9a43-2b8e-4d1a-9c57-0e4b7d2a1f30")
	testUser  = shared.Actor{UserID: ownerID}
	testAdmin = shared.Actor{UserID: uuid.New(), IsAdmin: true}
)

func createTestOrder(t *testing.T) *trade.Order {
	t.Helper()
	customer, err := trade.NewCustomer("Karim", "01800000000", "Mirpur 10")
	require.NoError(t, err)
	order, err := trade.NewOrder(ownerID, 1001, customer, decimal.NewFromInt(60), decimal.Zero)
	require.NoError(t, err)
	item, err := trade.NewOrderItem(7, "Saree", "SR", "FREE", 1, decimal.NewFromInt(2500))
	require.NoError(t, err)
	require.NoError(t, order.AddItem(*item))
	require.NoError(t, order.Finalize())
	order.ClearDomainEvents()
	return order
}

func newStorage(t *testing.T) *infra.FileSystemStorage {
	t.Helper()
	storage, err := infra.NewFileSystemStorage(&infra.FileSystemStorageConfig{
		BasePath: t.TempDir(),
		BaseURL:  "/api/v1/print/files",
	})
	require.NoError(t, err)
	return storage
}

func newService(t *testing.T, orders printing.OrderFinder, jobs domain.PrintJobRepository, renderer infra.PDFRenderer) *printing.InvoicePrintService {
	t.Helper()
	return printing.NewInvoicePrintService(orders, jobs, renderer, newStorage(t), printing.Config{
		DefaultPaperSize: domain.PaperSizeLabel4x6,
		CacheTTL:         time.Hour,
		JobRetention:     24 * time.Hour,
	})
}

var pdfBytes = []byte("%PDF-1.3 test")

// =============================================================================
// RenderInvoice
// =============================================================================

func TestInvoicePrintService_RenderInvoice(t *testing.T) {
	t.Run("renders with the default paper size and caches the result", func(t *testing.T) {
		order := createTestOrder(t)
		orders := new(MockOrderFinder)
		renderer := new(MockRenderer)
		service := newService(t, orders, new(MockJobRepository), renderer)
		invoiceCache := cache.NewInMemoryInvoiceCache(8)
		defer invoiceCache.Close()
		service.SetCache(invoiceCache)
		ctx := context.Background()

		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
		renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *infra.RenderRequest) bool {
			return req.PaperSize == domain.PaperSizeLabel4x6 && req.Order.ID == 1001 && req.Copies == 0
		})).Return(&infra.RenderResult{PDFData: pdfBytes, PageCount: 1}, nil).Once()

		first, err := service.RenderInvoice(ctx, testUser, order.ID, "")
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.Equal(t, "invoice-1001.pdf", first.Filename)
		assert.Equal(t, 1, first.PageCount)

		second, err := service.RenderInvoice(ctx, testUser, order.ID, "")
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, pdfBytes, second.PDFData)

		renderer.AssertNumberOfCalls(t, "Render", 1)
	})

	t.Run("a changed order misses the cache", func(t *testing.T) {
		order := createTestOrder(t)
		orders := new(MockOrderFinder)
		renderer := new(MockRenderer)
		service := newService(t, orders, new(MockJobRepository), renderer)
		invoiceCache := cache.NewInMemoryInvoiceCache(8)
		defer invoiceCache.Close()
		service.SetCache(invoiceCache)
		ctx := context.Background()

		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
		renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: pdfBytes, PageCount: 1}, nil)

		_, err := service.RenderInvoice(ctx, testUser, order.ID, "LABEL_100X70")
		require.NoError(t, err)
		order.UpdatedAt = order.UpdatedAt.Add(time.Minute)
		again, err := service.RenderInvoice(ctx, testUser, order.ID, "LABEL_100X70")
		require.NoError(t, err)

		assert.False(t, again.Cached)
		renderer.AssertNumberOfCalls(t, "Render", 2)
	})

	t.Run("invalid paper size", func(t *testing.T) {
		service := newService(t, new(MockOrderFinder), new(MockJobRepository), new(MockRenderer))

		_, err := service.RenderInvoice(context.Background(), testUser, uuid.New(), "A4")
		assert.ErrorIs(t, err, domain.ErrInvalidPaperSize)
	})

	t.Run("forbidden order is passed through", func(t *testing.T) {
		orders := new(MockOrderFinder)
		service := newService(t, orders, new(MockJobRepository), new(MockRenderer))
		id := uuid.New()
		orders.On("FindOrder", mock.Anything, testUser, id).Return(nil, shared.NewDomainError("FORBIDDEN", "Access denied"))

		_, err := service.RenderInvoice(context.Background(), testUser, id, "")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("render errors become domain errors", func(t *testing.T) {
		order := createTestOrder(t)
		orders := new(MockOrderFinder)
		renderer := new(MockRenderer)
		service := newService(t, orders, new(MockJobRepository), renderer)

		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
		renderer.On("Render", mock.Anything, mock.Anything).
			Return(nil, infra.NewRenderError(infra.ErrCodeRenderFailed, "layout aborted", errors.New("boom")))

		_, err := service.RenderInvoice(context.Background(), testUser, order.ID, "")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, infra.ErrCodeRenderFailed, domainErr.Code)
	})
}

// =============================================================================
// PrintInvoice
// =============================================================================

func TestInvoicePrintService_PrintInvoice(t *testing.T) {
	t.Run("completes the job and stores the PDF", func(t *testing.T) {
		order := createTestOrder(t)
		orders := new(MockOrderFinder)
		jobs := new(MockJobRepository)
		renderer := new(MockRenderer)
		pub := &recordingPublisher{}
		service := newService(t, orders, jobs, renderer)
		service.SetEventPublisher(pub)
		ctx := context.Background()

		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
		jobs.On("Save", mock.Anything, mock.AnythingOfType("*printing.PrintJob")).Return(nil)
		renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *infra.RenderRequest) bool {
			return req.Copies == 3 && req.PaperSize == domain.PaperSizeLabel100x70
		})).Return(&infra.RenderResult{PDFData: pdfBytes, PageCount: 3}, nil)

		resp, err := service.PrintInvoice(ctx, testUser, printing.PrintInvoiceRequest{
			OrderID:   order.ID,
			PaperSize: "LABEL_100X70",
			Copies:    3,
		})

		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", resp.Status)
		assert.Equal(t, int64(1001), resp.OrderNumber)
		assert.Equal(t, 3, resp.Copies)
		assert.Equal(t, 3, resp.PageCount)
		assert.Equal(t, int64(len(pdfBytes)), resp.FileSize)
		assert.Contains(t, resp.PdfURL, "/api/v1/print/files/")
		assert.Equal(t, ownerID.String(), resp.RequestedBy)
		assert.NotNil(t, resp.PrintedAt)

		assert.Equal(t, []domain.JobStatus{domain.JobStatusPending, domain.JobStatusRendering, domain.JobStatusCompleted}, jobs.saved)
		assert.Contains(t, pub.types(), "PrintJobCompleted")
	})

	t.Run("render failure marks the job failed", func(t *testing.T) {
		order := createTestOrder(t)
		orders := new(MockOrderFinder)
		jobs := new(MockJobRepository)
		renderer := new(MockRenderer)
		service := newService(t, orders, jobs, renderer)

		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
		jobs.On("Save", mock.Anything, mock.AnythingOfType("*printing.PrintJob")).Return(nil)
		renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("fpdf exploded"))

		_, err := service.PrintInvoice(context.Background(), testUser, printing.PrintInvoiceRequest{OrderID: order.ID})

		require.Error(t, err)
		assert.Equal(t, []domain.JobStatus{domain.JobStatusPending, domain.JobStatusRendering, domain.JobStatusFailed}, jobs.saved)
	})

	t.Run("too many copies", func(t *testing.T) {
		order := createTestOrder(t)
		orders := new(MockOrderFinder)
		jobs := new(MockJobRepository)
		service := newService(t, orders, jobs, new(MockRenderer))

		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)

		_, err := service.PrintInvoice(context.Background(), testUser, printing.PrintInvoiceRequest{OrderID: order.ID, Copies: 101})

		assert.ErrorIs(t, err, domain.ErrInvalidCopies)
		jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// Jobs
// =============================================================================

func renderingJob(t *testing.T, requestedBy uuid.UUID) *domain.PrintJob {
	t.Helper()
	job, err := domain.NewPrintJob(uuid.New(), 1001, domain.PaperSizeLabel4x6, 1, requestedBy)
	require.NoError(t, err)
	require.NoError(t, job.StartRendering())
	return job
}

func TestInvoicePrintService_GetJob(t *testing.T) {
	jobs := new(MockJobRepository)
	service := newService(t, new(MockOrderFinder), jobs, new(MockRenderer))
	ctx := context.Background()

	own := renderingJob(t, ownerID)
	other := renderingJob(t, uuid.New())
	missing := uuid.New()
	jobs.On("FindByID", mock.Anything, own.ID).Return(own, nil)
	jobs.On("FindByID", mock.Anything, other.ID).Return(other, nil)
	jobs.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	resp, err := service.GetJob(ctx, testUser, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "RENDERING", resp.Status)

	_, err = service.GetJob(ctx, testUser, other.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = service.GetJob(ctx, testAdmin, other.ID)
	assert.NoError(t, err)

	_, err = service.GetJob(ctx, testUser, missing)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestInvoicePrintService_ListJobs(t *testing.T) {
	t.Run("non-admin listing is scoped to the requester", func(t *testing.T) {
		jobs := new(MockJobRepository)
		service := newService(t, new(MockOrderFinder), jobs, new(MockRenderer))

		match := mock.MatchedBy(func(f domain.PrintJobFilter) bool {
			return f.RequestedBy != nil && *f.RequestedBy == ownerID &&
				f.Status != nil && *f.Status == domain.JobStatusCompleted &&
				f.Page == 1 && f.PageSize == shared.DefaultPageSize
		})
		jobs.On("FindAll", mock.Anything, match).Return([]domain.PrintJob{}, nil)
		jobs.On("Count", mock.Anything, match).Return(int64(0), nil)

		page, err := service.ListJobs(context.Background(), testUser, printing.ListJobsRequest{Status: "COMPLETED"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
		jobs.AssertExpectations(t)
	})

	t.Run("admin sees all jobs", func(t *testing.T) {
		jobs := new(MockJobRepository)
		service := newService(t, new(MockOrderFinder), jobs, new(MockRenderer))
		job := renderingJob(t, ownerID)

		match := mock.MatchedBy(func(f domain.PrintJobFilter) bool { return f.RequestedBy == nil })
		jobs.On("FindAll", mock.Anything, match).Return([]domain.PrintJob{*job}, nil)
		jobs.On("Count", mock.Anything, match).Return(int64(1), nil)

		page, err := service.ListJobs(context.Background(), testAdmin, printing.ListJobsRequest{PageSize: 5})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, job.ID.String(), page.Items[0].ID)
		assert.Equal(t, 5, page.PageSize)
	})

	t.Run("unknown status", func(t *testing.T) {
		service := newService(t, new(MockOrderFinder), new(MockJobRepository), new(MockRenderer))

		_, err := service.ListJobs(context.Background(), testAdmin, printing.ListJobsRequest{Status: "LOST"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	})
}

func TestInvoicePrintService_DownloadJob(t *testing.T) {
	order := createTestOrder(t)
	orders := new(MockOrderFinder)
	jobs := new(MockJobRepository)
	renderer := new(MockRenderer)
	service := newService(t, orders, jobs, renderer)
	ctx := context.Background()

	var stored *domain.PrintJob
	orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
	jobs.On("Save", mock.Anything, mock.AnythingOfType("*printing.PrintJob")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.PrintJob) }).
		Return(nil)
	renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: pdfBytes, PageCount: 1}, nil)

	resp, err := service.PrintInvoice(ctx, testUser, printing.PrintInvoiceRequest{OrderID: order.ID})
	require.NoError(t, err)
	jobs.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

	download, err := service.DownloadJob(ctx, testUser, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	defer download.Body.Close()

	data, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)
	assert.Equal(t, "invoice-1001.pdf", download.Filename)

	t.Run("pending job has no PDF", func(t *testing.T) {
		pending, err := domain.NewPrintJob(order.ID, order.Number, domain.PaperSizeLabel4x6, 1, ownerID)
		require.NoError(t, err)
		jobs.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)

		_, err = service.DownloadJob(ctx, testUser, pending.ID)
		assert.ErrorIs(t, err, domain.ErrPDFNotReady)
	})
}

func TestInvoicePrintService_GetJobsByOrder(t *testing.T) {
	order := createTestOrder(t)
	orders := new(MockOrderFinder)
	jobs := new(MockJobRepository)
	service := newService(t, orders, jobs, new(MockRenderer))

	job, err := domain.NewPrintJob(order.ID, order.Number, domain.PaperSizeLabel4x6, 2, ownerID)
	require.NoError(t, err)
	orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)
	jobs.On("FindByOrder", mock.Anything, order.ID).Return([]domain.PrintJob{*job}, nil)

	result, err := service.GetJobsByOrder(context.Background(), testUser, order.ID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 2, result[0].Copies)
}

func TestInvoicePrintService_CleanupExpired(t *testing.T) {
	jobs := new(MockJobRepository)
	service := newService(t, new(MockOrderFinder), jobs, new(MockRenderer))

	jobs.On("DeleteOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) >= 24*time.Hour
	})).Return(int64(4), nil)

	result, err := service.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.JobsDeleted)
	assert.Zero(t, result.FilesDeleted)

	t.Run("zero retention keeps everything", func(t *testing.T) {
		idle := new(MockJobRepository)
		keep := printing.NewInvoicePrintService(new(MockOrderFinder), idle, new(MockRenderer), newStorage(t), printing.Config{})

		result, err := keep.CleanupExpired(context.Background())
		require.NoError(t, err)
		assert.Zero(t, result.JobsDeleted)
		idle.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// Preview and reference data
// =============================================================================

func TestInvoicePrintService_Preview(t *testing.T) {
	renderer := infra.NewInvoiceRenderer(infra.WithDefaultTexts("Murdhanno", "Thank you"))
	orders := new(MockOrderFinder)
	service := newService(t, orders, new(MockJobRepository), renderer)
	ctx := context.Background()

	t.Run("ad hoc order data", func(t *testing.T) {
		data := &invoice.OrderData{
			ID:   7,
			Date: "2024-03-01",
			Customer: invoice.Customer{
				Name: "Rahim", Phone: "01700000000", Address: "Dhanmondi",
			},
			Items: []invoice.LineItem{
				{ProductName: "Panjabi", ProductSize: "XL", Quantity: 1, UnitPrice: decimal.NewFromInt(1200)},
			},
			Subtotal: decimal.NewFromInt(1200),
			Total:    decimal.NewFromInt(1200),
		}

		result, err := service.Preview(ctx, testUser, printing.PreviewRequest{Order: data, PaperSize: "LABEL_100X70"})
		require.NoError(t, err)
		assert.Equal(t, 1, result.PageCount)
		assert.Equal(t, 1, result.ItemRows)
		assert.NotEmpty(t, result.Ops)
	})

	t.Run("stored order", func(t *testing.T) {
		order := createTestOrder(t)
		orders.On("FindOrder", mock.Anything, testUser, order.ID).Return(order, nil)

		result, err := service.Preview(ctx, testUser, printing.PreviewRequest{OrderID: &order.ID})
		require.NoError(t, err)
		assert.Equal(t, invoice.VariantA, result.Geometry)
	})

	t.Run("no data", func(t *testing.T) {
		_, err := service.Preview(ctx, testUser, printing.PreviewRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestInvoicePrintService_GetPaperSizes(t *testing.T) {
	service := newService(t, new(MockOrderFinder), new(MockJobRepository), new(MockRenderer))

	sizes := service.GetPaperSizes()

	require.Len(t, sizes, 2)
	assert.Equal(t, "LABEL_4X6", sizes[0].Code)
	assert.True(t, sizes[0].Default)
	assert.InDelta(t, 101.6, sizes[0].WidthMM, 0.001)
	assert.Equal(t, "LABEL_100X70", sizes[1].Code)
	assert.False(t, sizes[1].Default)
	assert.InDelta(t, 70.0, sizes[1].HeightMM, 0.001)
}
