// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
)

// NewManager creates a new event manager
func NewManager() *Manager {
	return &Manager{
		Broadcast:  make(chan []byte, broadcastBufferSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[int]*Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done
func (manager *Manager) Run(ctx context.Context) {
	defer close(manager.done)

	for {
		select {
		case client := <-manager.Register:
			manager.mu.Lock()
			manager.Clients[client.ID] = client
			manager.mu.Unlock()
			log.Printf("Dashboard client %d connected", client.ID)

		case client := <-manager.Unregister:
			manager.remove(client.ID)

		case message := <-manager.Broadcast:
			manager.broadcast(message)

		case <-ctx.Done():
			manager.mu.Lock()
			for id, client := range manager.Clients {
				close(client.Send)
				delete(manager.Clients, id)
			}
			manager.mu.Unlock()
			return
		}
	}
}

// Publish encodes an event as JSON and queues it for every client.
// The event is dropped when the queue is full.
func (manager *Manager) Publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error encoding event: %v", err)
		return
	}

	select {
	case manager.Broadcast <- data:
	default:
		log.Println("Broadcast queue full, event dropped")
	}
}

// register hands a client to Run; false once Run has stopped
func (manager *Manager) register(client *Client) bool {
	select {
	case manager.Register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *Manager) unregister(client *Client) {
	select {
	case manager.Unregister <- client:
	case <-manager.done:
	}
}

// ClientCount returns the number of connected clients
func (manager *Manager) ClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.Clients)
}

// broadcast sends a message to every client, dropping the ones that lag behind
func (manager *Manager) broadcast(message []byte) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for id, client := range manager.Clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(manager.Clients, id)
			log.Printf("Dashboard client %d dropped: send buffer full", id)
		}
	}
}

func (manager *Manager) remove(id int) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if client, ok := manager.Clients[id]; ok {
		delete(manager.Clients, id)
		close(client.Send)
		log.Printf("Dashboard client %d disconnected", id)
	}
}
