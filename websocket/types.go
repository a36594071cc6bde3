// websocket/types.go
package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one dashboard connection listening for run events
type Client struct {
	ID     int
	Socket *websocket.Conn
	Send   chan []byte
}

// Manager fans run events out to every connected client
type Manager struct {
	Clients    map[int]*Client
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	mu     sync.RWMutex
	nextID int
	done   chan struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard may be served from another origin
	},
}
