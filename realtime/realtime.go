package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	dayClients = make(map[string]map[*websocket.Conn]bool) // Map of day key to connected clients
	broadcast  = make(chan SolveUpdate)                    // Broadcast channel for solve events
	mutex      sync.Mutex                                  // Mutex to protect dayClients map
)

// SolveUpdate announces that someone closed their attempt for a day
type SolveUpdate struct {
	DateKey string `json:"date_key"`
	Tries   int    `json:"tries"`
	Solved  bool   `json:"solved"`
	GaveUp  bool   `json:"gave_up"`
}

// RegisterClient adds a WebSocket client to a specific day's feed
func RegisterClient(dateKey string, conn *websocket.Conn) {
	mutex.Lock()
	if dayClients[dateKey] == nil {
		dayClients[dateKey] = make(map[*websocket.Conn]bool)
	}
	dayClients[dateKey][conn] = true
	mutex.Unlock()
}

// UnregisterClient removes a WebSocket client from a specific day's feed
func UnregisterClient(dateKey string, conn *websocket.Conn) {
	mutex.Lock()
	if clients, exists := dayClients[dateKey]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(dayClients, dateKey)
		}
	}
	mutex.Unlock()
}

// BroadcastSolveUpdate sends an update to all clients watching the day
func BroadcastSolveUpdate(update SolveUpdate) {
	broadcast <- update
}

func handleBroadcast() {
	for {
		update := <-broadcast
		mutex.Lock()
		if clients, exists := dayClients[update.DateKey]; exists {
			for client := range clients {
				if err := client.WriteJSON(update); err != nil {
					log.Printf("WebSocket write error: %v", err)
					client.Close()
					delete(clients, client)
				}
			}
		}
		mutex.Unlock()
	}
}

func init() {
	go handleBroadcast()
}
