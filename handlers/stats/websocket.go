package stats

import (
	"log"
	"net/http"

	"api/realtime"
	"api/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveSolvesWebSocket streams solve updates for a day as they land
func (h *Handler) LiveSolvesWebSocket(c *gin.Context) {
	dateKey := services.SanitizeDateKey(c.Query("dateKey"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	realtime.RegisterClient(dateKey, conn)
	defer func() {
		realtime.UnregisterClient(dateKey, conn)
		conn.Close()
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
