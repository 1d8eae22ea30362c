package alert

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/solenne/chatsense/backend/internal/model/analysis"
)

// Hub fans alerts out to connected websocket clients. It is registered as
// the alert manager's dispatch callback; the manager has already recorded
// the alert by the time Dispatch runs, so delivery failures only cost the
// broken connection.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Dispatch pushes the alert to every connected client.
func (h *Hub) Dispatch(a analysis.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(a); err != nil {
			log.Printf("[alert] dropping websocket client: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
