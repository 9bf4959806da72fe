package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/murdhanno/backend/internal/application/catalog"
)

// CatalogHandler serves product types, size groups and products
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListProductTypes godoc
// @Summary      List product types
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Name contains"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductTypeResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /product-types [get]
func (h *CatalogHandler) ListProductTypes(c *gin.Context) {
	var req catalogapp.ProductTypeListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.catalogService.ListProductTypes(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// GetProductType godoc
// @Summary      Get a product type
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product type ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductTypeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /product-types/{id} [get]
func (h *CatalogHandler) GetProductType(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.catalogService.GetProductType(c.Request.Context(), id)
	h.reply(c, t, err)
}

// CreateProductType godoc
// @Summary      Create a product type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductTypeRequest true "Product type"
// @Success      201 {object} dto.Response{data=catalogapp.ProductTypeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /product-types [post]
func (h *CatalogHandler) CreateProductType(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.ProductTypeRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	t, err := h.catalogService.CreateProductType(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, t)
}

// UpdateProductType godoc
// @Summary      Rename a product type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product type ID" format(uuid)
// @Param        request body catalogapp.ProductTypeRequest true "Product type"
// @Success      200 {object} dto.Response{data=catalogapp.ProductTypeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /product-types/{id} [put]
func (h *CatalogHandler) UpdateProductType(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.ProductTypeRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	t, err := h.catalogService.UpdateProductType(c.Request.Context(), actor, id, req)
	h.reply(c, t, err)
}

// DeleteProductType godoc
// @Summary      Delete a product type
// @Description  Only types without products can be deleted.
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product type ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /product-types/{id} [delete]
func (h *CatalogHandler) DeleteProductType(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	err := h.catalogService.DeleteProductType(c.Request.Context(), actor, id)
	h.reply(c, gin.H{"deleted": id}, err)
}

// ListSizeGroups godoc
// @Summary      List size groups
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        product_type_id query string false "Product type ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.SizeGroupResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /size-groups [get]
func (h *CatalogHandler) ListSizeGroups(c *gin.Context) {
	var req catalogapp.SizeGroupListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.catalogService.ListSizeGroups(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// GetSizeGroup godoc
// @Summary      Get a size group
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Size group ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.SizeGroupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /size-groups/{id} [get]
func (h *CatalogHandler) GetSizeGroup(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	g, err := h.catalogService.GetSizeGroup(c.Request.Context(), id)
	h.reply(c, g, err)
}

// CreateSizeGroup godoc
// @Summary      Create a size group
// @Description  Links every ungrouped product of the type whose size is in the group.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateSizeGroupRequest true "Size group"
// @Success      201 {object} dto.Response{data=catalogapp.SizeGroupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /size-groups [post]
func (h *CatalogHandler) CreateSizeGroup(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.CreateSizeGroupRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	g, err := h.catalogService.CreateSizeGroup(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, g)
}

// UpdateSizeGroup godoc
// @Summary      Replace the sizes of a group
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Size group ID" format(uuid)
// @Param        request body catalogapp.UpdateSizeGroupRequest true "Sizes"
// @Success      200 {object} dto.Response{data=catalogapp.SizeGroupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /size-groups/{id} [put]
func (h *CatalogHandler) UpdateSizeGroup(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.UpdateSizeGroupRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	g, err := h.catalogService.UpdateSizeGroup(c.Request.Context(), actor, id, req)
	h.reply(c, g, err)
}

// DeleteSizeGroup godoc
// @Summary      Delete a size group
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Size group ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /size-groups/{id} [delete]
func (h *CatalogHandler) DeleteSizeGroup(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	err := h.catalogService.DeleteSizeGroup(c.Request.Context(), actor, id)
	h.reply(c, gin.H{"deleted": id}, err)
}

// ListProducts godoc
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Name or code contains"
// @Param        product_type_id query string false "Product type ID" format(uuid)
// @Param        in_stock query boolean false "Only products with stock"
// @Param        low_stock query boolean false "Only products running out"
// @Param        order_by query string false "Sort field" Enums(created_at,updated_at,name,code,size,quantity,price)
// @Param        order_dir query string false "Sort direction" Enums(asc,desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.catalogService.ListProducts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// ListAvailable godoc
// @Summary      List in-stock products
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/available [get]
func (h *CatalogHandler) ListAvailable(c *gin.Context) {
	products, err := h.catalogService.ListAvailable(c.Request.Context())
	h.reply(c, products, err)
}

// LowStock godoc
// @Summary      List products running out
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/low-stock [get]
func (h *CatalogHandler) LowStock(c *gin.Context) {
	products, err := h.catalogService.LowStock(c.Request.Context())
	h.reply(c, products, err)
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalogService.GetProduct(c.Request.Context(), id)
	h.reply(c, p, err)
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.ProductRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	p, err := h.catalogService.CreateProduct(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindJSON[catalogapp.ProductRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	p, err := h.catalogService.UpdateProduct(c.Request.Context(), actor, id, req)
	h.reply(c, p, err)
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Description  Products that appear on an order cannot be deleted.
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	err := h.catalogService.DeleteProduct(c.Request.Context(), actor, id)
	h.reply(c, gin.H{"deleted": id}, err)
}
