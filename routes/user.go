package routes

import (
	cartControllers "github.com/Adarsh0311/shopsphere-backend/controllers/cart"
	userControllers "github.com/Adarsh0311/shopsphere-backend/controllers/user"
	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers profile and cart endpoints. Requires JWT middleware.
func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	api.GET("/users/me", middleware.ValidateToken(d.Tokens), userControllers.GetMe(d.Users))

	cartGroup := api.Group("/cart")
	cartGroup.Use(middleware.ValidateToken(d.Tokens))
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts))
		cartGroup.POST("/add", cartControllers.AddToCart(d.Carts))
		cartGroup.PUT("/update-quantity/:productId", cartControllers.UpdateQuantity(d.Carts))
		cartGroup.DELETE("/remove/:productId", cartControllers.RemoveFromCart(d.Carts))
		cartGroup.DELETE("/clear", cartControllers.ClearCart(d.Carts))
	}
}
