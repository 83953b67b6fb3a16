package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a fresh client to the hub and runs its pumps. Blocks for
// the lifetime of the connection.
func ServeWs(hub *Hub, c *websocket.Conn, userID string) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
