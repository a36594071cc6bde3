// websocket/connection_handler.go
package websocket

import (
	"log"
	"net/http"
)

// HandleConnections upgrades a request and registers the client for run events
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Error upgrading websocket connection:", err)
		return
	}

	manager.mu.Lock()
	manager.nextID++
	id := manager.nextID
	manager.mu.Unlock()

	client := &Client{
		ID:     id,
		Socket: conn,
		Send:   make(chan []byte, sendBufferSize),
	}

	if !manager.register(client) {
		conn.Close()
		return
	}

	go client.readPump(manager)
	go client.writePump()
}
