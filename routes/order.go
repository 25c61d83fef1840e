package routes

import (
	orderControllers "github.com/Adarsh0311/shopsphere-backend/controllers/order"
	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(api *gin.RouterGroup, d Deps) {
	orders := api.Group("/orders")
	orders.Use(middleware.ValidateToken(d.Tokens))
	{
		// Create a new order from the caller's cart
		orders.POST("", orderControllers.PlaceOrder(d.Checkout))

		orders.GET("/my-orders", orderControllers.GetMyOrders(d.Orders))
		orders.GET("/:id", orderControllers.GetOrderByID(d.Orders))
	}
}
