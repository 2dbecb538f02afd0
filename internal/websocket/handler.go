package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an upgraded connection to the hub for the given user.
func ServeWs(hub *Hub, c *websocket.Conn, email string) {
	client := &Client{Hub: hub, Conn: c, Email: email, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
