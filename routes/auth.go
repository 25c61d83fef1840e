package routes

import (
	userControllers "github.com/Adarsh0311/shopsphere-backend/controllers/user"
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all "/api/auth/*" endpoints.
func SetupAuthRoutes(api *gin.RouterGroup, d Deps) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", userControllers.Register(d.Users))
		authGroup.POST("/login", userControllers.Login(d.Users))
	}
}
