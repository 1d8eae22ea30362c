package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	alertHandler "github.com/solenne/chatsense/backend/internal/handler/alert"
	analysisHandler "github.com/solenne/chatsense/backend/internal/handler/analysis"
	chatHandler "github.com/solenne/chatsense/backend/internal/handler/chat"
	exportHandler "github.com/solenne/chatsense/backend/internal/handler/export"
	sessionHandler "github.com/solenne/chatsense/backend/internal/handler/session"
	"github.com/solenne/chatsense/backend/internal/handler/stream"
	middlewarePkg "github.com/solenne/chatsense/backend/internal/middleware"
	aiService "github.com/solenne/chatsense/backend/internal/service/ai"
	alertService "github.com/solenne/chatsense/backend/internal/service/alert"
	classifierService "github.com/solenne/chatsense/backend/internal/service/classifier"
	sessionService "github.com/solenne/chatsense/backend/internal/service/session"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *sessionService.Service, classifiers *classifierService.Service, alerts *alertService.Manager, hub *alertHandler.Hub, aiSvc *aiService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	var streamHandler *stream.Handler
	if aiSvc != nil {
		streamHandler = stream.New(aiSvc, sessions, classifiers, alerts)
	}

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(sessions, classifiers, alerts, aiSvc).RegisterRoutes(api)
		sessionHandler.New(sessions).RegisterRoutes(api)
		analysisHandler.New(classifiers, sessions).RegisterRoutes(api)
		exportHandler.New(sessions, classifiers).RegisterRoutes(api)
		alertHandler.New(alerts, hub).RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}
			if streamHandler == nil {
				// No model configured; keep the connection useful for clients
				// that check for availability.
				handleHeartbeatStream(w, r, sessionID)
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}

// handleHeartbeatStream keeps an SSE connection alive when AI generation is
// unavailable.
func handleHeartbeatStream(w http.ResponseWriter, r *http.Request, sessionID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	log.Printf("[sse] opening heartbeat stream for session=%s", sessionID)

	ticker := time.NewTicker(8 * time.Second)
	defer ticker.Stop()

	utils.SendSSEEvent(w, flusher, "status", map[string]any{
		"message": "ai generation unavailable",
	})

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing heartbeat stream for session=%s", sessionID)
			return
		case t := <-ticker.C:
			utils.SendSSEEvent(w, flusher, "heartbeat", map[string]any{
				"message": "awaiting model availability",
				"time":    t.UTC().Format(time.RFC3339),
			})
		}
	}
}
