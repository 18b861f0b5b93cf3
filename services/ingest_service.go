//go:generate go run go.uber.org/mock/mockgen -source=ingest_service.go -destination=../mocks/mock_ingest_service.go -package=mocks
package services

import (
	"chat-live/domain"
	"chat-live/moderation"
	"chat-live/observability"
	"chat-live/repositories"
	"context"
	"fmt"
	"log/slog"
)

type IIngestService interface {
	CreateMessage(ctx context.Context, chatID domain.ChatID, userID domain.UserID, text string) (*domain.Message, error)
}

type IngestService struct {
	log        *slog.Logger
	messages   repositories.IMessageRepository
	moderator  *moderation.Moderator
	monitoring *observability.MonitoringManager
}

// NewIngestService builds the write path. moderator may be nil when no word
// list is configured.
func NewIngestService(log *slog.Logger, messages repositories.IMessageRepository,
	moderator *moderation.Moderator, monitoring *observability.MonitoringManager) *IngestService {
	return &IngestService{log: log, messages: messages, moderator: moderator, monitoring: monitoring}
}

// CreateMessage writes a message authored by userID in chatID.
// Empty text is a no-op: nothing is written and (nil, nil) is returned.
// Whitespace is content and is stored as posted.
// A missing chat or user yields ErrNotFound.
func (s *IngestService) CreateMessage(ctx context.Context, chatID domain.ChatID, userID domain.UserID, text string) (*domain.Message, error) {
	if text == "" {
		s.log.Debug("Ignoring empty message", "chat_id", chatID, "user_id", userID)
		return nil, nil
	}

	if s.moderator != nil {
		censored, words := s.moderator.Censor(text)
		if len(words) > 0 {
			s.log.Info("Message moderated", "chat_id", chatID, "user_id", userID, "words", len(words))
		}
		text = censored
	}

	message, err := s.messages.CreateMessage(ctx, domain.NewMessage{ChatID: chatID, UserID: userID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("create message in chat %d: %w", chatID, err)
	}

	s.monitoring.MessageCreated(message)
	return &message, nil
}
