// websocket/constants.go
package websocket

import (
	"time"
)

const (
	// Time allowed to write a message to the client
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the client
	pongWait = 60 * time.Second

	// Ping period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 4 * 1024

	// Pending messages per client before it is dropped
	sendBufferSize = 64

	// Pending broadcasts before new events are discarded
	broadcastBufferSize = 256
)
