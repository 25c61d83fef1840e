package routes

import (
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

// Deps carries everything the route groups hand to their controllers.
type Deps struct {
	Tokens   *auth.TokenIssuer
	Users    *services.UserService
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Admin    *services.AdminService
	Outbox   *notify.Outbox
	Hub      *notify.Hub

	LowStockThreshold int

	// The Telr webhook is only mounted when Telr takes the payments.
	TelrWebhookEnabled bool
	TelrWebhookSecret  string
	TelrSandbox        bool
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// 1️⃣ Public auth + catalog browsing
	SetupAuthRoutes(api, d)
	SetupCatalogRoutes(api, d)

	// 2️⃣ Signed-in shoppers
	SetupUserRoutes(api, d)
	SetupOrderRoutes(api, d)

	// 3️⃣ ROLE_ADMIN only
	SetupAdminRoutes(api, d)

	// telr payment callbacks
	if d.TelrWebhookEnabled {
		SetupTelrRoutes(r, d)
	}
}
