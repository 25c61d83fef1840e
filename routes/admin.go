package routes

import (
	adminController "github.com/Adarsh0311/shopsphere-backend/controllers/admin"
	orderControllers "github.com/Adarsh0311/shopsphere-backend/controllers/order"
	productcontroller "github.com/Adarsh0311/shopsphere-backend/controllers/product"
	userControllers "github.com/Adarsh0311/shopsphere-backend/controllers/user"
	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers all "/api/admin/*" endpoints.
func SetupAdminRoutes(api *gin.RouterGroup, d Deps) {
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.ValidateToken(d.Tokens), middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.GET("/dashboard", adminController.GetDashboardStats(d.Admin))
		adminGroup.GET("/notifications", adminController.GetNotificationBacklog(d.Outbox))

		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.Users))
		adminGroup.GET("/users/:id", userControllers.GetUserByID(d.Users))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.Catalog))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.Catalog))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(d.Catalog))
			productAdmin.GET("/low-stock", productcontroller.GetLowStockProducts(d.Catalog, d.LowStockThreshold))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(d.Catalog))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(d.Catalog))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(d.Catalog))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(d.Catalog))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(d.Catalog))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrders(d.Orders))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatus(d.Orders))
			orderAdmin.PUT("/:id/payment-status", orderControllers.UpdatePaymentStatus(d.Orders))

			// websocket feed of new orders
			orderAdmin.GET("/ws", orderControllers.OrderWebSocketHandler(d.Hub))
		}
	}
}
