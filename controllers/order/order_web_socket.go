package orderControllers

import (
	"log"
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// OrderWebSocketHandler streams order confirmations to connected admin dashboards.
func OrderWebSocketHandler(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("⚠️ websocket upgrade failed:", err)
			return
		}
		hub.Serve(conn)
	}
}
