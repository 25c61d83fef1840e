package cartControllers

import (
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

type quantityInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GET /api/cart
func GetCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		cart, err := carts.GetCart(c.Request.Context(), identity)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /api/cart/add
func AddToCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input services.AddToCartRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := carts.AddToCart(c.Request.Context(), identity, input)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// PUT /api/cart/update-quantity/:productId
func UpdateQuantity(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input quantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := carts.UpdateQuantity(c.Request.Context(), identity, c.Param("productId"), input.Quantity)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart/remove/:productId
func RemoveFromCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		cart, err := carts.RemoveFromCart(c.Request.Context(), identity, c.Param("productId"))
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart/clear
func ClearCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := carts.ClearCart(c.Request.Context(), identity); err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
