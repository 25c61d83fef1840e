package adminController

import (
	"log"
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

// GET /api/admin/dashboard
func GetDashboardStats(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := admin.DashboardStats(c.Request.Context())
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GET /api/admin/notifications
// Outbox backlog: confirmations waiting for delivery and dead-lettered ones.
func GetNotificationBacklog(outbox *notify.Outbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := outbox.Pending(c.Request.Context())
		if err != nil {
			log.Println("❌ Failed to count pending notifications:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read notification outbox"})
			return
		}
		dead, err := outbox.DeadLettered(c.Request.Context())
		if err != nil {
			log.Println("❌ Failed to count dead-lettered notifications:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read notification outbox"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pending": pending, "dead_lettered": dead})
	}
}
