package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/application/printing"
	"github.com/murdhanno/backend/internal/application/trade"
)

const pdfContentType = "application/pdf"

// OrderHandler handles order endpoints and on-the-fly invoice rendering
type OrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
	printService *printing.InvoicePrintService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *trade.OrderService, printService *printing.InvoicePrintService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		printService: printService,
	}
}

// CreateOrder godoc
// @Summary      Create an order
// @Description  Takes the ordered quantities out of stock and assigns each item its serial and tracking code.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body trade.CreateOrderRequest true "Customer and items"
// @Success      201 {object} dto.Response{data=trade.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	req, ok := bindJSON[trade.CreateOrderRequest](&h.BaseHandler, c)
	if !ok {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListOrders godoc
// @Summary      List orders
// @Description  Users see their own orders; admins see all.
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        status query string false "Order status" Enums(pending,processing,completed,cancelled)
// @Param        search query string false "Customer name, phone or order number"
// @Param        from query string false "Created on or after" format(date)
// @Param        to query string false "Created on or before" format(date)
// @Param        order_by query string false "Sort field" Enums(created_at,number,total_amount,customer_name,status)
// @Param        order_dir query string false "Sort direction" Enums(asc,desc)
// @Success      200 {object} dto.Response{data=[]trade.OrderListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter trade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// GetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Change the status of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body trade.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=trade.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	req, ok := bindJSON[trade.UpdateStatusRequest](&h.BaseHandler, c)
	if !ok {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetInvoice godoc
// @Summary      Render the invoice PDF
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID" format(uuid)
// @Param        paper_size query string false "Label stock" Enums(LABEL_4X6,LABEL_100X70)
// @Success      200 {file} binary "Invoice PDF"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	rendered, err := h.printService.RenderInvoice(c.Request.Context(), actor, id, c.Query("paper_size"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+rendered.Filename+"\"")
	c.Header("X-Page-Count", strconv.Itoa(rendered.PageCount))
	if rendered.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Data(http.StatusOK, pdfContentType, rendered.PDFData)
}
