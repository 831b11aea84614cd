package api

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one connected WebSocket subscriber. The server owns the
// client map and drives readPump/writePump directly; Client only holds
// the per-connection state those pumps need.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	mu   sync.RWMutex
	Subs map[string]bool
}
