package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/application/printing"
)

// PrintHandler handles invoice print jobs and previews
type PrintHandler struct {
	BaseHandler
	printService *printing.InvoicePrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService *printing.InvoicePrintService) *PrintHandler {
	return &PrintHandler{
		printService: printService,
	}
}

// =============================================================================
// Preview
// =============================================================================

// Preview godoc
// @Summary      Preview an invoice layout
// @Description  Returns the page count and draw operations without producing a PDF.
// @Tags         print
// @Accept       json
// @Produce      json
// @Param        request body printing.PreviewRequest true "Order and paper size"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/preview [post]
func (h *PrintHandler) Preview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	req, ok := bindJSON[printing.PreviewRequest](&h.BaseHandler, c)
	if !ok {
		return
	}

	result, err := h.printService.Preview(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// =============================================================================
// Print Jobs
// =============================================================================

// CreateJob godoc
// @Summary      Print an invoice
// @Tags         print
// @Accept       json
// @Produce      json
// @Param        request body printing.PrintInvoiceRequest true "Order and paper size"
// @Success      201 {object} dto.Response{data=printing.PrintJobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/jobs [post]
func (h *PrintHandler) CreateJob(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	req, ok := bindJSON[printing.PrintInvoiceRequest](&h.BaseHandler, c)
	if !ok {
		return
	}

	job, err := h.printService.PrintInvoice(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, job)
}

// ListJobs godoc
// @Summary      List print jobs
// @Tags         print
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        status query string false "Job status" Enums(PENDING,RENDERING,COMPLETED,FAILED)
// @Param        order_id query string false "Order ID" format(uuid)
// @Param        paper_size query string false "Paper size" Enums(LABEL_4X6,LABEL_100X70)
// @Param        order_by query string false "Sort field" Enums(created_at,updated_at,order_number,status,printed_at)
// @Param        order_dir query string false "Sort direction" Enums(asc,desc)
// @Success      200 {object} dto.Response{data=[]printing.PrintJobResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/jobs [get]
func (h *PrintHandler) ListJobs(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req printing.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.printService.ListJobs(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// GetJob godoc
// @Summary      Get a print job
// @Tags         print
// @Produce      json
// @Param        id path string true "Print job ID" format(uuid)
// @Success      200 {object} dto.Response{data=printing.PrintJobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/jobs/{id} [get]
func (h *PrintHandler) GetJob(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	job, err := h.printService.GetJob(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// GetJobsByOrder godoc
// @Summary      List the print history of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]printing.PrintJobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/print-jobs [get]
func (h *PrintHandler) GetJobsByOrder(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	jobs, err := h.printService.GetJobsByOrder(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, jobs)
}

// DownloadJob godoc
// @Summary      Download a printed invoice
// @Tags         print
// @Produce      application/pdf
// @Param        id path string true "Print job ID" format(uuid)
// @Success      200 {file} binary "Invoice PDF"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/jobs/{id}/download [get]
func (h *PrintHandler) DownloadJob(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	download, err := h.printService.DownloadJob(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer download.Body.Close()

	size := download.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, pdfContentType, download.Body, map[string]string{
		"Content-Disposition": "attachment; filename=\"" + download.Filename + "\"",
	})
}

// =============================================================================
// Reference Data
// =============================================================================

// GetPaperSizes godoc
// @Summary      List paper sizes
// @Tags         print
// @Produce      json
// @Success      200 {object} dto.Response{data=[]printing.PaperSizeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/paper-sizes [get]
func (h *PrintHandler) GetPaperSizes(c *gin.Context) {
	h.Success(c, h.printService.GetPaperSizes())
}
