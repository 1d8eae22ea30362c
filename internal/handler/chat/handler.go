package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solenne/chatsense/backend/internal/model/analysis"
	"github.com/solenne/chatsense/backend/internal/model/conversation"
	aiservice "github.com/solenne/chatsense/backend/internal/service/ai"
	alertservice "github.com/solenne/chatsense/backend/internal/service/alert"
	classifierservice "github.com/solenne/chatsense/backend/internal/service/classifier"
	sessionservice "github.com/solenne/chatsense/backend/internal/service/session"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

const fallbackReply = "I apologize, but I ran into a problem generating a response. Please try again."

// Handler orchestrates one chat turn: append the user message, classify it,
// evaluate the alert policy, and produce the assistant reply.
type Handler struct {
	sessions    *sessionservice.Service
	classifiers *classifierservice.Service
	alerts      *alertservice.Manager
	ai          *aiservice.Service
}

// New creates the chat handler. ai may be nil; replies then degrade to a
// fixed fallback while analysis keeps working.
func New(sessions *sessionservice.Service, classifiers *classifierservice.Service, alerts *alertservice.Manager, ai *aiservice.Service) *Handler {
	return &Handler{
		sessions:    sessions,
		classifiers: classifiers,
		alerts:      alerts,
		ai:          ai,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/summary", h.handleSummary)
}

type chatResponse struct {
	SessionID string                   `json:"sessionId"`
	Reply     string                   `json:"reply"`
	Sentiment analysis.SentimentResult `json:"sentiment"`
	Emotion   analysis.Classification  `json:"emotion"`
	Alert     *analysis.Alert          `json:"alert,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	sessionID, err := h.ensureSession(ctx, payload.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	history, err := h.sessions.History(ctx, sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if _, err := h.sessions.AppendMessage(ctx, sessionID, conversation.RoleUser, payload.Message); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sentiment := h.classifiers.AnalyzeSentiment(ctx, payload.Message)
	emotion := h.classifiers.AnalyzeEmotion(ctx, payload.Message)
	alert := h.alerts.Evaluate(sentiment.Score, payload.Message)

	reply := h.generateReply(ctx, history, payload.Message)
	if _, err := h.sessions.AppendMessage(ctx, sessionID, conversation.RoleAssistant, reply); err != nil {
		log.Printf("[chat] failed to append assistant reply: %v", err)
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Sentiment: sentiment,
		Emotion:   emotion,
		Alert:     alert,
	})
}

// handleSummary produces an AI-generated summary of a conversation. The
// caller supplies either a session id or the transcript itself.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string                 `json:"sessionId"`
		History   []conversation.Message `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	history := payload.History
	if payload.SessionID != "" {
		loaded, err := h.sessions.History(ctx, payload.SessionID)
		if err != nil {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		history = loaded
	}
	if len(history) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "history is required")
		return
	}

	if h.ai == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "summary generation unavailable")
		return
	}

	summary, err := h.ai.Summarize(ctx, history)
	if err != nil {
		log.Printf("[chat] summary generation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate summary")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// ensureSession resolves the target session, creating one when the caller
// did not name any.
func (h *Handler) ensureSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		created, err := h.sessions.CreateSession(ctx, "")
		if err != nil {
			return "", err
		}
		return created.ID, nil
	}

	if _, err := h.sessions.GetSession(ctx, sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (h *Handler) generateReply(ctx context.Context, history []conversation.Message, userMessage string) string {
	if h.ai == nil {
		return fallbackReply
	}

	reply, err := h.ai.GenerateReply(ctx, history, userMessage)
	if err != nil || reply == "" {
		log.Printf("[chat] reply generation failed: %v", err)
		return fallbackReply
	}
	return reply
}
