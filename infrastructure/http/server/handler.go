package server

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/errors"
	"chat-live/observability"
	"chat-live/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the chat HTTP API: pages as JSON, message ingest and the
// live message stream.
type Handler struct {
	log        *slog.Logger
	ingest     services.IIngestService
	reads      services.IReadService
	subscriber contract.ISubscriber
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
}

func NewHandler(log *slog.Logger, ingest services.IIngestService, reads services.IReadService,
	subscriber contract.ISubscriber, registry contract.IRegistry, monitoring *observability.MonitoringManager) *Handler {
	return &Handler{
		log:        log,
		ingest:     ingest,
		reads:      reads,
		subscriber: subscriber,
		registry:   registry,
		monitoring: monitoring,
	}
}

// GetUser returns the user with the chats they take part in.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, notFound("user", err))
		return
	}
	view, err := h.reads.GetUserView(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, view, http.StatusOK)
}

// GetChat returns the chat page: participants, ordered messages and the viewer.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID, chatID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	page, err := h.reads.GetChatPage(r.Context(), userID, chatID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, page, http.StatusOK)
}

// PostMessage reads the form field "text". Empty text answers 200 with null
// and writes nothing.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, chatID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	message, err := h.ingest.CreateMessage(r.Context(), chatID, userID, r.FormValue("text"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if message == nil {
		h.writeJSON(w, nil, http.StatusOK)
		return
	}
	h.writeJSON(w, message, http.StatusCreated)
}

// Search looks messages of a chat up. q accepts --lang and --limit flags,
// the lang and limit query parameters are appended to it.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	chatID, err := domain.ParseChatID(chi.URLParam(r, "chatId"))
	if err != nil {
		h.writeError(w, notFound("chat", err))
		return
	}
	query := r.URL.Query()
	input := query.Get("q")
	if lang := query.Get("lang"); lang != "" {
		input += " --lang " + lang
	}
	if limit := query.Get("limit"); limit != "" {
		input += " --limit " + limit
	}
	hits, err := h.reads.Search(r.Context(), chatID, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, hits, http.StatusOK)
}

// pathIDs parses userId and chatId. Malformed ids are answered as not found.
func (h *Handler) pathIDs(w http.ResponseWriter, r *http.Request) (domain.UserID, domain.ChatID, bool) {
	userID, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, notFound("user", err))
		return 0, 0, false
	}
	chatID, err := domain.ParseChatID(chi.URLParam(r, "chatId"))
	if err != nil {
		h.writeError(w, notFound("chat", err))
		return 0, 0, false
	}
	return userID, chatID, true
}

func notFound(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrNotFound, what, err)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "status", status, "error", err)
	} else {
		h.log.Debug("Request rejected", "status", status, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
