package websocket

import (
	"time"

	"github.com/coder/websocket"
)

// Message types sent to preview pages.
const (
	MessageReload = "reload"
	MessageError  = "error"
)

// Client represents a WebSocket client connection
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	remoteAddr   string
	lastActivity time.Time
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
