package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/solenne/chatsense/backend/internal/model/conversation"
	aiservice "github.com/solenne/chatsense/backend/internal/service/ai"
	alertservice "github.com/solenne/chatsense/backend/internal/service/alert"
	classifierservice "github.com/solenne/chatsense/backend/internal/service/classifier"
	sessionservice "github.com/solenne/chatsense/backend/internal/service/session"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

// Handler streams assistant replies via Server-Sent Events, then emits the
// sentiment analysis of the user message and any raised alert.
type Handler struct {
	ai          *aiservice.Service
	sessions    *sessionservice.Service
	classifiers *classifierservice.Service
	alerts      *alertservice.Manager
}

// New creates the stream handler.
func New(ai *aiservice.Service, sessions *sessionservice.Service, classifiers *classifierservice.Service, alerts *alertservice.Manager) *Handler {
	return &Handler{
		ai:          ai,
		sessions:    sessions,
		classifiers: classifiers,
		alerts:      alerts,
	}
}

// StreamResponse represents a streaming response chunk.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest processes one streamed chat turn.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	history, err := h.sessions.History(ctx, sessionID)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to load session: %v", err))
		return err
	}

	if _, err := h.sessions.AppendMessage(ctx, sessionID, conversation.RoleUser, userMessage); err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to save user message: %v", err))
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	response, err := h.dispatchAIResponse(ctx, w, flusher, sessionID, history, userMessage)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("AI generation failed: %v", err))
		return err
	}

	if _, err := h.sessions.AppendMessage(ctx, sessionID, conversation.RoleAssistant, response.Content); err != nil {
		log.Printf("failed to save assistant message: %v", err)
	}

	// Analyze the user message and run the alert policy once the reply is
	// out, so a slow classifier never delays the stream.
	sentiment := h.classifiers.AnalyzeSentiment(ctx, userMessage)
	if payload, err := json.Marshal(sentiment); err == nil {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "sentiment",
			SessionID: sessionID,
			Content:   string(payload),
		})
	}

	if alert := h.alerts.Evaluate(sentiment.Score, userMessage); alert != nil {
		if payload, err := json.Marshal(alert); err == nil {
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "alert",
				SessionID: sessionID,
				Content:   string(payload),
			})
		}
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s", sessionID)
	return nil
}

func (h *Handler) dispatchAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, history []conversation.Message, userMessage string) (*schema.Message, error) {
	if h.ai.StreamingEnabled() {
		return h.streamAIResponse(ctx, w, flusher, sessionID, history, userMessage)
	}

	reply, err := h.ai.GenerateReply(ctx, history, userMessage)
	if err != nil {
		return nil, err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   reply,
	})

	return schema.AssistantMessage(reply, nil), nil
}

func (h *Handler) streamAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, history []conversation.Message, userMessage string) (*schema.Message, error) {
	stream, err := h.ai.StreamReply(ctx, history, userMessage)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   chunk.Content,
			})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   response.Content,
	})

	return response, nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
