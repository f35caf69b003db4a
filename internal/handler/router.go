package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/escuela-gastro/procurement-api/internal/middleware"
	"github.com/escuela-gastro/procurement-api/internal/models"
	"github.com/escuela-gastro/procurement-api/internal/repository"
	"github.com/escuela-gastro/procurement-api/internal/service"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Requests      *RequestHandler
	Procurement   *ProcurementHandler
	Orders        *OrderHandler
	Inventory     *InventoryHandler
	Suppliers     *SupplierHandler
	Export        *ExportHandler
	Configuration *ConfigurationHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the API surface under /api/v1.
func RegisterRoutes(router *gin.Engine, h Handlers, authService *service.AuthService, metricsService *service.MetricsService, auditRepo *repository.UserRepository) {
	router.GET("/health", h.Metrics.Health)
	router.GET("/ready", h.Metrics.Ready)
	router.GET("/metrics", h.Metrics.Prometheus)

	api := router.Group("/api/v1")
	api.Use(middleware.WithResponseMeta())
	if metricsService != nil {
		api.Use(middleware.Metrics(metricsService))
	}

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authService))
		authed.POST("/logout", h.Auth.Logout)
		authed.POST("/change-password", h.Auth.ChangePassword)
		authed.GET("/me", h.Auth.Me)
	}

	// Download links carry their own signed token. A bearer token, when
	// present, attributes the download in the audit trail.
	if auditRepo != nil {
		api.GET("/export/:token", middleware.OptionalJWT(authService), middleware.Audit(auditRepo, models.AuditActionExportDownload, "export"), h.Export.Download)
	} else {
		api.GET("/export/:token", h.Export.Download)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	superAdminOnly := middleware.RequireRoles(models.RoleSuperAdmin)

	users := protected.Group("/users")
	users.Use(adminOnly)
	{
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.POST("", h.Users.Create)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", superAdminOnly, h.Users.Delete)
	}

	requests := protected.Group("/requests")
	{
		requests.POST("", h.Requests.Submit)
		requests.GET("", h.Requests.List)
		requests.GET("/:id", h.Requests.Get)
		requests.PUT("/:id", h.Requests.Update)
		requests.DELETE("/:id", h.Requests.Delete)
		requests.POST("/:id/review", adminOnly, h.Requests.Review)
	}

	procurement := protected.Group("/procurement")
	{
		procurement.GET("/status", h.Procurement.Status)

		admin := procurement.Group("")
		admin.Use(adminOnly)
		admin.POST("/start", h.Procurement.Start)
		admin.POST("/start-selection", h.Procurement.StartFromSelection)
		admin.POST("/terminate-collection", h.Procurement.TerminateCollection)
		admin.POST("/accept-reconciliation", h.Procurement.AcceptReconciliation)
		admin.POST("/accept-quotes", h.Procurement.AcceptQuotes)
		admin.POST("/finalize", h.Procurement.Finalize)
		admin.POST("/cancel", h.Procurement.Cancel)
	}

	orders := protected.Group("/orders")
	orders.Use(adminOnly)
	{
		orders.GET("", h.Orders.List)
		orders.GET("/:id", h.Orders.Get)
		orders.POST("/:id/export", h.Export.Generate)
	}

	products := protected.Group("/products")
	{
		products.GET("", h.Inventory.List)
		products.GET("/:id", h.Inventory.Get)
		products.POST("", adminOnly, h.Inventory.Create)
		products.POST("/:id/stock", adminOnly, h.Inventory.AdjustStock)
	}

	suppliers := protected.Group("/suppliers")
	suppliers.Use(adminOnly)
	{
		suppliers.GET("", h.Suppliers.List)
		suppliers.GET("/:id", h.Suppliers.Get)
		suppliers.POST("", h.Suppliers.Create)
		suppliers.PUT("/:id/offerings", h.Suppliers.UpsertOffering)
	}

	configuration := protected.Group("/configuration")
	{
		configuration.GET("", h.Configuration.List)
		configuration.GET("/:key", h.Configuration.Get)
		configuration.PUT("/bulk", adminOnly, h.Configuration.BulkUpdate)
		configuration.PUT("/:key", adminOnly, h.Configuration.Update)
	}
}
