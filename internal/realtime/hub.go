// Package realtime fans scan progress out to websocket subscribers.
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/scanner"
)

// Hub tracks connected websocket clients and pushes scan progress to
// all of them. Clients that fail a write are dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	logger  *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  log,
	}
}

// AddClient registers a connection for broadcasts.
func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("Websocket client connected")
}

// RemoveClient deregisters and closes a connection.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()

	_ = conn.Close()
	h.logger.WithField("clients", count).Debug("Websocket client disconnected")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastScanProgress pushes one progress event to every client.
func (h *Hub) BroadcastScanProgress(progress scanner.Progress) {
	h.broadcastJSON(progress)
}

func (h *Hub) broadcastJSON(v any) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.RUnlock()

	for _, conn := range clients {
		if err := conn.WriteJSON(v); err != nil {
			h.logger.WithError(err).Debug("Dropping websocket client")
			h.RemoveClient(conn)
		}
	}
}

var _ scanner.Broadcaster = (*Hub)(nil)
