// Package gateway exposes the signal history over REST and pushes
// accepted signals to WebSocket clients.
package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"fxsignals/internal/model"

	"github.com/gorilla/websocket"
)

// Hub manages WebSocket clients and signal fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  []byte // last broadcast envelope, replayed to new clients

	// Optional — reports the client count on connect/disconnect.
	OnClientCount func(n int)
}

// NewHub creates a hub with no clients.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Broadcast fans an accepted signal out to every connected client.
// Slow clients are skipped; the envelope is also retained for replay to
// clients that connect later.
func (h *Hub) Broadcast(sig model.Signal) {
	envelope, err := json.Marshal(map[string]interface{}{
		"type":      "signal",
		"signal":    sig,
		"formatted": sig.Formatted(),
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("[gateway] marshal signal envelope: %v", err)
		return
	}

	h.mu.Lock()
	h.latest = envelope
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
			// drop for this client rather than block the scan loop
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] broadcast %s to %d clients", sig.Formatted(), n)
}

// HandleWSRequest registers an upgraded connection and starts its pumps.
func (h *Hub) HandleWSRequest(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	latest := h.latest
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)
	if h.OnClientCount != nil {
		h.OnClientCount(count)
	}

	// replay the most recent signal so a fresh dashboard isn't blank
	if latest != nil {
		select {
		case client.send <- latest:
		default:
		}
	}

	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	close(c.send)

	if h.OnClientCount != nil {
		h.OnClientCount(count)
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
