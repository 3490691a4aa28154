package ws

import "github.com/gorilla/websocket"

// Client is one connected HR dashboard.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID int
}
