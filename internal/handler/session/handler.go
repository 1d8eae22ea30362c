package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solenne/chatsense/backend/internal/model/conversation"
	sessionservice "github.com/solenne/chatsense/backend/internal/service/session"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

// Handler exposes session lifecycle operations over HTTP.
type Handler struct {
	sessions *sessionservice.Service
}

// New creates the session handler.
func New(sessions *sessionservice.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreate)
	r.Get("/sessions", h.handleList)
	r.Get("/sessions/{sessionID}/history", h.handleHistory)
	r.Post("/sessions/{sessionID}/messages", h.handleAppend)
	r.Post("/sessions/{sessionID}/save", h.handleSave)
	r.Post("/sessions/load", h.handleLoad)
	r.Delete("/sessions/{sessionID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	// An empty body means a generated id.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.sessions.CreateSession(r.Context(), payload.SessionID)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSessionExists) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessions.List(r.Context(), "")
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.sessions.History(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, history)
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.sessions.AppendMessage(r.Context(), sessionID, conversation.Role(payload.Role), payload.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, message)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	path, err := h.sessions.Persist(r.Context(), sessionID, "")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"filepath": path})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Filepath string `json:"filepath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Filepath == "" {
		utils.RespondError(w, http.StatusBadRequest, "filepath is required")
		return
	}

	loaded, err := h.sessions.Load(r.Context(), payload.Filepath)
	if err != nil {
		if errors.Is(err, sessionservice.ErrCorruptState) {
			utils.RespondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, loaded)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sessionservice.ErrInvalidRole), errors.Is(err, sessionservice.ErrEmptyContent):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
