package export

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	exportpkg "github.com/solenne/chatsense/backend/internal/export"
	classifierservice "github.com/solenne/chatsense/backend/internal/service/classifier"
	sessionservice "github.com/solenne/chatsense/backend/internal/service/session"
	"github.com/solenne/chatsense/backend/pkg/utils"
)

// Handler renders session exports in the supported formats.
type Handler struct {
	sessions    *sessionservice.Service
	classifiers *classifierservice.Service
}

// New creates the export handler.
func New(sessions *sessionservice.Service, classifiers *classifierservice.Service) *Handler {
	return &Handler{sessions: sessions, classifiers: classifiers}
}

// RegisterRoutes registers the export route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/export", h.handleExport)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	ctx := r.Context()
	session, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	userMessages := session.UserMessages()
	statements := h.classifiers.AnalyzeStatements(ctx, userMessages)
	emotions := h.classifiers.AnalyzeEmotions(ctx, userMessages)
	overall := h.classifiers.AnalyzeConversation(ctx, strings.Join(userMessages, " "))

	switch format {
	case "json":
		data, err := exportpkg.Snapshot(session.History, &exportpkg.Analysis{
			Overall:        &overall,
			Statements:     statements,
			EmotionSummary: h.classifiers.EmotionSummary(emotions),
		})
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename="+sessionID+".json")
		w.Write(data)
	case "csv":
		out, err := exportpkg.CSV(session.History, statements)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+sessionID+".csv")
		w.Write([]byte(out))
	case "report":
		out := exportpkg.Report(session.History, &overall, statements)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+sessionID+".txt")
		w.Write([]byte(out))
	default:
		utils.RespondError(w, http.StatusBadRequest, "format must be json, csv, or report")
	}
}
