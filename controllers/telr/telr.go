package telrControllers

import (
	"log"
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

// Telr's tran_status for an authorised transaction.
const statusApproved = "A"

// TelrWebhookHandler settles the payment of an order that was charged
// through the Telr hosted page. tran_cartid carries the order id and
// tran_order the Telr order ref stored as the payment's transaction id.
func TelrWebhookHandler(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form"})
			return
		}

		orderID := c.PostForm("tran_cartid")
		tranStatus := c.PostForm("tran_status")
		tranRef := c.PostForm("tran_ref")
		telrOrderRef := c.PostForm("tran_order")

		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing tran_cartid"})
			return
		}

		log.Printf("📩 Telr webhook for order %s: status=%q order=%s tran=%s", orderID, tranStatus, telrOrderRef, tranRef)

		approved := tranStatus == statusApproved
		if err := orders.SettleHostedPayment(c.Request.Context(), orderID, telrOrderRef, approved); err != nil {
			middleware.RespondError(c, err)
			return
		}

		if !approved {
			c.JSON(http.StatusOK, gin.H{"message": "Payment not successful"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed"})
	}
}
