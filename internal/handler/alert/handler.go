package alert

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	alertservice "github.com/solenne/chatsense/backend/internal/service/alert"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

// Handler exposes the alert policy over HTTP plus a websocket alert feed.
type Handler struct {
	manager  *alertservice.Manager
	hub      *Hub
	upgrader websocket.Upgrader
}

// New creates the alert handler. hub may be the same instance registered as
// the manager's dispatch callback.
func New(manager *alertservice.Manager, hub *Hub) *Handler {
	return &Handler{
		manager: manager,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the alert routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.handleHistory)
	r.Delete("/alerts", h.handleClear)
	r.Put("/alerts/threshold", h.handleSetThreshold)
	r.Put("/alerts/enabled", h.handleSetEnabled)
	r.Get("/alerts/stream", h.handleStream)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"threshold": h.manager.Threshold(),
		"enabled":   h.manager.Enabled(),
		"alerts":    h.manager.History(),
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.manager.Clear()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Threshold *float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Threshold == nil {
		utils.RespondError(w, http.StatusBadRequest, "threshold is required")
		return
	}

	// Out-of-range values are silently retained by the manager; echo the
	// effective threshold so callers can tell.
	h.manager.SetThreshold(*payload.Threshold)
	utils.RespondJSON(w, http.StatusOK, map[string]float64{"threshold": h.manager.Threshold()})
}

func (h *Handler) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Enabled == nil {
		utils.RespondError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.manager.SetEnabled(*payload.Enabled)
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"enabled": h.manager.Enabled()})
}

// handleStream upgrades to a websocket and keeps the connection registered
// with the hub until the client goes away.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[alert] websocket upgrade failed: %v", err)
		return
	}

	h.hub.add(conn)
	defer h.hub.remove(conn)

	// Drain client frames; the feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[alert] websocket read error: %v", err)
			}
			return
		}
	}
}
