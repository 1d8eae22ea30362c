package analysis

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	classifierservice "github.com/solenne/chatsense/backend/internal/service/classifier"
	sessionservice "github.com/solenne/chatsense/backend/internal/service/session"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

// Handler exposes sentiment and emotion analysis over HTTP.
type Handler struct {
	classifiers *classifierservice.Service
	sessions    *sessionservice.Service
}

// New creates the analysis handler.
func New(classifiers *classifierservice.Service, sessions *sessionservice.Service) *Handler {
	return &Handler{classifiers: classifiers, sessions: sessions}
}

// RegisterRoutes registers the analysis routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sentiment", h.handleSentiment)
	r.Post("/emotion", h.handleEmotion)
	r.Get("/sessions/{sessionID}/analysis", h.handleSessionAnalysis)
}

func (h *Handler) handleSentiment(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.classifiers.AnalyzeSentiment(r.Context(), text))
}

func (h *Handler) handleEmotion(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.classifiers.AnalyzeEmotion(r.Context(), text))
}

// handleSessionAnalysis classifies every user message of a session and
// returns the per-statement results together with the conversation-level
// aggregates.
func (h *Handler) handleSessionAnalysis(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	userMessages := session.UserMessages()
	statements := h.classifiers.AnalyzeStatements(r.Context(), userMessages)
	emotions := h.classifiers.AnalyzeEmotions(r.Context(), userMessages)
	overall := h.classifiers.AnalyzeConversation(r.Context(), strings.Join(userMessages, " "))

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"overall_sentiment":    overall,
		"statement_sentiments": statements,
		"statement_emotions":   emotions,
		"emotion_summary":      h.classifiers.EmotionSummary(emotions),
	})
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return "", false
	}
	return payload.Text, true
}
