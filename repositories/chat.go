//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"chat-live/domain"
	chatErrors "chat-live/errors"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IChatRepository interface {
	CreateChat(ctx context.Context, participants []domain.UserID) (domain.Chat, error)
	GetChat(ctx context.Context, id domain.ChatID) (domain.Chat, error)
	ListChatsForUser(ctx context.Context, userID domain.UserID) ([]domain.Chat, error)
}

type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateChat persists a chat with a fixed participant set.
// Every participant must exist; duplicates are collapsed.
func (c ChatRepository) CreateChat(_ context.Context, participants []domain.UserID) (domain.Chat, error) {
	participants = lo.Uniq(participants)
	if len(participants) == 0 {
		return domain.Chat{}, fmt.Errorf("chat without participants: %w", chatErrors.ErrInvalidInput)
	}

	var chat domain.Chat
	err := update(c.db, func(txn *badger.Txn) error {
		users := make([]domain.User, 0, len(participants))
		for _, id := range participants {
			user, err := getUser(txn, id)
			if err != nil {
				return err
			}
			users = append(users, fromDiskUser(user))
		}

		id, err := nextCounter(txn, chatCounter)
		if err != nil {
			return err
		}
		chatID := domain.ChatID(id)
		data, err := encodeChat(DiskChat{
			ID:           int64(chatID),
			Participants: lo.Map(participants, func(u domain.UserID, _ int) int64 { return int64(u) }),
		})
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		if err = txn.Set(chatKey(chatID), data); err != nil {
			return err
		}
		for _, userID := range participants {
			if err = txn.Set(memberKey(userID, chatID), []byte{}); err != nil {
				return err
			}
		}
		chat = domain.Chat{ID: chatID, Participants: users}
		return nil
	})
	return chat, err
}

func (c ChatRepository) GetChat(_ context.Context, id domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = resolveChat(txn, id)
		return err
	})
	return chat, err
}

// ListChatsForUser walks the membership index of one user.
func (c ChatRepository) ListChatsForUser(_ context.Context, userID domain.UserID) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		if _, err := getUser(txn, userID); err != nil {
			return err
		}

		prefix := memberPrefixFor(userID)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var chatIDs []domain.ChatID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("corrupted membership key %q: %w", it.Item().Key(), err)
			}
			chatIDs = append(chatIDs, domain.ChatID(id))
		}

		for _, chatID := range chatIDs {
			chat, err := resolveChat(txn, chatID)
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	return chats, err
}
