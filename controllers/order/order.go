package orderControllers

import (
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

// Status is validated by the service after the order lookup, so a missing
// order is reported before a missing status.
type statusInput struct {
	Status string `json:"status"`
}

// POST /api/orders
// Turns the caller's cart into an order and charges it.
func PlaceOrder(checkout *services.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req services.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := checkout.PlaceOrder(c.Request.Context(), identity, req)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /api/orders/my-orders
func GetMyOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		list, err := orders.GetUserOrders(c.Request.Context(), identity)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /api/orders/:id
func GetOrderByID(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		order, err := orders.GetOrder(c.Request.Context(), identity, c.Param("id"))
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /api/admin/orders
func GetAllOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.GetAllOrders(c.Request.Context())
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// PUT /api/admin/orders/:id/status
func UpdateOrderStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input statusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), input.Status)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /api/admin/orders/:id/payment-status
func UpdatePaymentStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input statusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := orders.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), input.Status)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
