package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	shippingapp "github.com/murdhanno/backend/internal/application/shipping"
)

// ShippingHandler serves courier locations and shipment booking
type ShippingHandler struct {
	BaseHandler
	shippingService *shippingapp.ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shippingService *shippingapp.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// ListCities godoc
// @Summary      List courier cities
// @Description  Cities the courier delivers to. Served from cache while fresh; refresh=true asks the courier.
// @Tags         courier
// @Produce      json
// @Param        refresh query bool false "Bypass the location cache"
// @Success      200 {object} dto.Response{data=[]shipping.CityResponse}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /courier/cities [get]
func (h *ShippingHandler) ListCities(c *gin.Context) {
	var q shippingapp.LocationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	cities, err := h.shippingService.ListCities(c.Request.Context(), q)
	h.reply(c, cities, err)
}

// ListZones godoc
// @Summary      List courier zones of a city
// @Tags         courier
// @Produce      json
// @Param        cityID path int true "Courier city ID"
// @Param        refresh query bool false "Bypass the location cache"
// @Success      200 {object} dto.Response{data=[]shipping.ZoneResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /courier/zones/{cityID} [get]
func (h *ShippingHandler) ListZones(c *gin.Context) {
	cityID, err := strconv.Atoi(c.Param("cityID"))
	if err != nil {
		h.BadRequest(c, "Invalid cityID format")
		return
	}
	var q shippingapp.LocationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	zones, err := h.shippingService.ListZones(c.Request.Context(), cityID, q)
	h.reply(c, zones, err)
}

// RequestShipping godoc
// @Summary      Book a courier pickup
// @Description  Sends the order to the courier once and stores the consignment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body shipping.ShippingRequest true "Delivery location"
// @Success      201 {object} dto.Response{data=shipping.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/shipping [post]
func (h *ShippingHandler) RequestShipping(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindJSON[shippingapp.ShippingRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	shipment, err := h.shippingService.RequestShipping(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// GetShipment godoc
// @Summary      Get the shipment of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=shipping.ShipmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/shipping [get]
func (h *ShippingHandler) GetShipment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	shipment, err := h.shippingService.GetShipment(c.Request.Context(), actor, id)
	h.reply(c, shipment, err)
}
