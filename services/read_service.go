//go:generate go run go.uber.org/mock/mockgen -source=read_service.go -destination=../mocks/mock_read_service.go -package=mocks
package services

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/domain/search"
	chatErrors "chat-live/errors"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type IReadService interface {
	GetUserView(ctx context.Context, userID domain.UserID) (domain.UserView, error)
	GetChatPage(ctx context.Context, userID domain.UserID, chatID domain.ChatID) (domain.ChatPage, error)
	EnsureChatAndUser(ctx context.Context, userID domain.UserID, chatID domain.ChatID) error
	Search(ctx context.Context, chatID domain.ChatID, input string) ([]search.Hit, error)
}

// userReader, chatReader and messageReader are the read halves of the repositories.
type userReader interface {
	GetUser(ctx context.Context, id domain.UserID) (domain.User, error)
}

type chatReader interface {
	GetChat(ctx context.Context, id domain.ChatID) (domain.Chat, error)
	ListChatsForUser(ctx context.Context, userID domain.UserID) ([]domain.Chat, error)
}

type messageReader interface {
	ListMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error)
}

// ReadService serves the pages of the chat. Every store failure is reported
// as ErrNotFound, the underlying cause stays in the chain for the logs.
type ReadService struct {
	log      *slog.Logger
	users    userReader
	chats    chatReader
	messages messageReader
	index    contract.IMessageIndex
}

// NewReadService builds the read path. index may be nil when search is disabled.
func NewReadService(log *slog.Logger, users userReader, chats chatReader, messages messageReader,
	index contract.IMessageIndex) *ReadService {
	return &ReadService{log: log, users: users, chats: chats, messages: messages, index: index}
}

func (s *ReadService) GetUserView(ctx context.Context, userID domain.UserID) (domain.UserView, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.UserView{}, s.notFound(fmt.Sprintf("user %d", userID), err)
	}
	chats, err := s.chats.ListChatsForUser(ctx, userID)
	if err != nil {
		return domain.UserView{}, s.notFound(fmt.Sprintf("chats of user %d", userID), err)
	}
	return domain.UserView{User: user, Chats: chats}, nil
}

// GetChatPage returns the chat with its messages in canonical order together
// with the viewing user. Both must exist.
func (s *ReadService) GetChatPage(ctx context.Context, userID domain.UserID, chatID domain.ChatID) (domain.ChatPage, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.ChatPage{}, s.notFound(fmt.Sprintf("user %d", userID), err)
	}
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return domain.ChatPage{}, s.notFound(fmt.Sprintf("chat %d", chatID), err)
	}
	messages, err := s.messages.ListMessages(ctx, chatID)
	if err != nil {
		return domain.ChatPage{}, s.notFound(fmt.Sprintf("messages of chat %d", chatID), err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return domain.ChatPage{
		Chat: domain.ChatView{Chat: chat, Messages: messages},
		User: user,
	}, nil
}

// EnsureChatAndUser is the existence check run before a stream is opened.
func (s *ReadService) EnsureChatAndUser(ctx context.Context, userID domain.UserID, chatID domain.ChatID) error {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return s.notFound(fmt.Sprintf("user %d", userID), err)
	}
	if _, err := s.chats.GetChat(ctx, chatID); err != nil {
		return s.notFound(fmt.Sprintf("chat %d", chatID), err)
	}
	return nil
}

// Search runs a full-text query restricted to one chat. The input accepts the
// --lang and --limit flags understood by search.NewSearchQuery.
func (s *ReadService) Search(ctx context.Context, chatID domain.ChatID, input string) ([]search.Hit, error) {
	if _, err := s.chats.GetChat(ctx, chatID); err != nil {
		return nil, s.notFound(fmt.Sprintf("chat %d", chatID), err)
	}
	query := search.NewSearchQuery(input)
	if query.Terms == "" {
		return nil, fmt.Errorf("%w: empty search", chatErrors.ErrInvalidInput)
	}
	if s.index == nil {
		return []search.Hit{}, nil
	}
	query.ChatID = chatID
	hits, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search chat %d: %w", chatID, err)
	}
	return hits, nil
}

func (s *ReadService) notFound(what string, err error) error {
	if !errors.Is(err, chatErrors.ErrNotFound) {
		s.log.Warn("Store query failed", "target", what, "error", err)
	}
	return fmt.Errorf("%w: %s: %w", chatErrors.ErrNotFound, what, err)
}
