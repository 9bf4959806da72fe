package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/interfaces/http/middleware"
	"github.com/murdhanno/backend/internal/interfaces/http/router"
)

// AuthRoutes creates the route group for authentication. Login and refresh
// are public; loginLimiter guards the login endpoint when set.
func AuthRoutes(handler *AuthHandler, authMiddleware gin.HandlerFunc, loginLimiter gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("auth", "/auth")

	login := []gin.HandlerFunc{handler.Login}
	if loginLimiter != nil {
		login = append([]gin.HandlerFunc{loginLimiter}, login...)
	}
	group.POST("/login", login...)
	group.POST("/refresh", handler.RefreshToken)

	group.POST("/logout", authMiddleware, handler.Logout)
	group.GET("/me", authMiddleware, handler.GetCurrentUser)
	group.PUT("/password", authMiddleware, handler.ChangePassword)

	return group
}

// UserRoutes creates the admin-only route group for staff users
func UserRoutes(handler *UserHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("users", "/users")
	group.Use(authMiddleware, middleware.RequireAdmin())

	group.GET("", handler.ListUsers)
	group.POST("", handler.CreateUser)
	group.PATCH("/:id/toggle-active", handler.ToggleActive)
	group.PATCH("/:id/toggle-role", handler.ToggleRole)

	return group
}

// CatalogRoutes creates the route group for product types, size groups and
// products. Every signed-in user reads the catalog; only admins change it.
func CatalogRoutes(handler *CatalogHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("catalog", "")
	group.Use(authMiddleware)
	admin := middleware.RequireAdmin()

	types := group.Group("product-types", "/product-types")
	types.GET("", handler.ListProductTypes)
	types.GET("/:id", handler.GetProductType)
	types.POST("", admin, handler.CreateProductType)
	types.PUT("/:id", admin, handler.UpdateProductType)
	types.DELETE("/:id", admin, handler.DeleteProductType)

	groups := group.Group("size-groups", "/size-groups")
	groups.GET("", handler.ListSizeGroups)
	groups.GET("/:id", handler.GetSizeGroup)
	groups.POST("", admin, handler.CreateSizeGroup)
	groups.PUT("/:id", admin, handler.UpdateSizeGroup)
	groups.DELETE("/:id", admin, handler.DeleteSizeGroup)

	products := group.Group("products", "/products")
	products.GET("", handler.ListProducts)
	products.GET("/available", handler.ListAvailable)
	products.GET("/low-stock", handler.LowStock)
	products.GET("/:id", handler.GetProduct)
	products.POST("", admin, handler.CreateProduct)
	products.PUT("/:id", admin, handler.UpdateProduct)
	products.DELETE("/:id", admin, handler.DeleteProduct)

	return group
}

// OrderRoutes creates the route group for orders, their invoices and their
// shipments
func OrderRoutes(handler *OrderHandler, printHandler *PrintHandler, shippingHandler *ShippingHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("orders", "/orders")
	group.Use(authMiddleware)

	group.POST("", handler.CreateOrder)
	group.GET("", handler.ListOrders)
	group.GET("/:id", handler.GetOrder)
	group.PATCH("/:id/status", middleware.RequireAdmin(), handler.UpdateStatus)
	group.GET("/:id/invoice", handler.GetInvoice)
	group.GET("/:id/print-jobs", printHandler.GetJobsByOrder)
	group.POST("/:id/shipping", shippingHandler.RequestShipping)
	group.GET("/:id/shipping", shippingHandler.GetShipment)

	return group
}

// CourierRoutes creates the route group for the courier's city and zone lists
func CourierRoutes(handler *ShippingHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("courier", "/courier")
	group.Use(authMiddleware)

	group.GET("/cities", handler.ListCities)
	group.GET("/zones/:cityID", handler.ListZones)

	return group
}

// PrintRoutes creates the route group for print-related endpoints
func PrintRoutes(handler *PrintHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("print", "/print")
	group.Use(authMiddleware)

	group.POST("/preview", handler.Preview)

	group.POST("/jobs", handler.CreateJob)
	group.GET("/jobs", handler.ListJobs)
	group.GET("/jobs/:id", handler.GetJob)
	group.GET("/jobs/:id/download", handler.DownloadJob)

	group.GET("/paper-sizes", handler.GetPaperSizes)

	return group
}

// ReportRoutes creates the route group for reports
func ReportRoutes(handler *ReportHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("reports", "/reports")
	group.Use(authMiddleware)

	group.GET("/sales", handler.SalesReport)
	group.GET("/sales/export", handler.ExportSalesReport)

	return group
}

// SystemRoutes creates the public health group
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "")
	group.GET("/health", handler.Health)
	return group
}
