package server

import (
	"chat-live/domain"
	chatErrors "chat-live/errors"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmaxmax/go-sse"
)

const errorEventName = "error"

// StreamMessages pushes every message created in the chat after the request,
// or after the stored position of sessionId, as one SSE frame each:
//
//	event: message-<chatId>
//	id: <messageId>
//	data: <message JSON>
//
// A failing feed ends the stream with a single "error" frame. A client that
// goes away stops the subscription synchronously.
func (h *Handler) StreamMessages(w http.ResponseWriter, r *http.Request) {
	userID, chatID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.reads.EnsureChatAndUser(ctx, userID, chatID); err != nil {
		h.writeError(w, err)
		return
	}

	session, err := sse.Upgrade(w, r)
	if err != nil {
		h.writeError(w, fmt.Errorf("upgrade to event stream: %w", err))
		return
	}
	session.Res.Header().Set("Cache-Control", "no-cache")
	session.Res.Header().Set("Connection", "keep-alive")
	session.Res.Header().Set("X-Accel-Buffering", "no")

	sessionID := domain.SessionID(r.URL.Query().Get("sessionId"))
	log := h.log.With("chat_id", chatID, "user_id", userID, "session_id", sessionID.String())

	stream, stop := h.subscriber.Subscribe(ctx, chatID, sessionID)
	defer stop()
	connectionID := h.registry.Register(chatID, sessionID)
	defer h.registry.Unregister(chatID, connectionID)
	h.monitoring.StreamOpened()
	defer h.monitoring.StreamClosed()

	log.Info("Stream opened", "connection_id", connectionID, "last_event_id", session.LastEventID.String())
	if err = session.Flush(); err != nil {
		log.Debug("Client gone before the first frame", "error", err)
		return
	}

	for {
		message, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, chatErrors.ErrStreamStopped) {
				log.Info("Stream closed", "connection_id", connectionID)
				return
			}
			log.Error("Stream failed", "error", err)
			h.monitoring.IncrFeedErrors()
			h.sendError(session, err)
			return
		}

		frame, err := messageFrame(chatID, message)
		if err != nil {
			log.Error("Failed to encode frame", "message_id", message.ID, "error", err)
			h.sendError(session, err)
			return
		}
		if err = session.Send(frame); err == nil {
			err = session.Flush()
		}
		if err != nil {
			// The message stays unacknowledged and is replayed to this session.
			log.Info("Client gone while sending", "message_id", message.ID, "error", err)
			return
		}
		h.monitoring.IncrFramesSent()
		if err = stream.Ack(ctx); err != nil {
			log.Error("Failed to acknowledge frame", "message_id", message.ID, "error", err)
			h.monitoring.IncrFeedErrors()
			h.sendError(session, err)
			return
		}
	}
}

func messageFrame(chatID domain.ChatID, message domain.Message) (*sse.Message, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}
	frame := &sse.Message{
		ID:   sse.ID(message.ID.String()),
		Type: sse.Type(chatID.EventName()),
	}
	frame.AppendData(string(data))
	return frame, nil
}

func (h *Handler) sendError(session *sse.Session, cause error) {
	data, _ := json.Marshal(errorResponse{Error: cause.Error()})
	frame := &sse.Message{Type: sse.Type(errorEventName)}
	frame.AppendData(string(data))
	if err := session.Send(frame); err == nil {
		_ = session.Flush()
	}
}
