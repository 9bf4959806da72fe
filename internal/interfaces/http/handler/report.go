package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/application/trade"
)

// ReportHandler serves the sales report
type ReportHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(orderService *trade.OrderService) *ReportHandler {
	return &ReportHandler{
		orderService: orderService,
	}
}

// SalesReport godoc
// @Summary      Sales report
// @Description  Aggregates orders created between start and end inclusive. Users see their own sales; admins see all.
// @Tags         reports
// @Produce      json
// @Param        start query string false "First day, defaults to 30 days before end" format(date)
// @Param        end query string false "Last day, defaults to today" format(date)
// @Success      200 {object} dto.Response{data=trade.SalesReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/sales [get]
func (h *ReportHandler) SalesReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req trade.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	report, err := h.orderService.SalesReport(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trade.ToSalesReportResponse(report))
}

// ExportSalesReport godoc
// @Summary      Export the sales report
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        start query string false "First day, defaults to 30 days before end" format(date)
// @Param        end query string false "Last day, defaults to today" format(date)
// @Success      200 {file} binary "XLSX workbook"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/sales/export [get]
func (h *ReportHandler) ExportSalesReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req trade.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filename, data, err := h.orderService.ExportSalesReport(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, trade.XLSXContentType, data)
}
