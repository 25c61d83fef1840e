package routes

import (
	telrControllers "github.com/Adarsh0311/shopsphere-backend/controllers/telr"
	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/gin-gonic/gin"
)

func SetupTelrRoutes(r *gin.Engine, d Deps) {
	payment := r.Group("/payment")
	{
		// Webhook endpoint: middleware handles sandbox/prod verification
		payment.POST("/webhook",
			middleware.TelrWebhookAuth(d.TelrWebhookSecret, d.TelrSandbox),
			telrControllers.TelrWebhookHandler(d.Orders),
		)
	}
}
