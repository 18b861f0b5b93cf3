//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-live/domain"
	"chat-live/domain/event"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	CreateMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error)
	ListMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	feed          *FeedRepository
	feedRetention time.Duration
	limitMessages *int
	now           func() time.Time

	// Serialises writers so feed sequence order equals commit order.
	mu sync.Mutex
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, feed *FeedRepository, feedRetention time.Duration, limitMessages *int) *MessageRepository {
	return &MessageRepository{
		db:            db,
		log:           log,
		feed:          feed,
		feedRetention: feedRetention,
		limitMessages: limitMessages,
		now:           time.Now,
	}
}

// CreateMessage persists a message and its change feed entries atomically.
// The key of the message is formatted as "msg:{chat}:{created_at}:{id}" so a
// prefix scan yields the canonical order. createdAt is strictly increasing per
// chat: a clock that stands still or goes backwards is bumped one nanosecond
// past the previous message.
func (m *MessageRepository) CreateMessage(_ context.Context, message domain.NewMessage) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var created DiskMessage
	var seq uint64
	err := update(m.db, func(txn *badger.Txn) error {
		author, err := getUser(txn, message.UserID)
		if err != nil {
			return err
		}
		if _, err = getChat(txn, message.ChatID); err != nil {
			return err
		}

		id, err := nextCounter(txn, messageCounter)
		if err != nil {
			return err
		}
		createdAt := m.now().UTC()
		last, found, err := lastCreatedAt(txn, message.ChatID)
		if err != nil {
			return err
		}
		if found && !createdAt.After(last) {
			createdAt = last.Add(time.Nanosecond)
		}

		created = DiskMessage{
			ID:         int64(id),
			ChatID:     int64(message.ChatID),
			UserID:     int64(message.UserID),
			AuthorName: author.Name,
			Text:       message.Text,
			CreatedAt:  createdAt,
		}
		data, err := encodeMessage(created)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		if err = txn.Set(messageKey(message.ChatID, createdAt, domain.MessageID(id)), data); err != nil {
			return err
		}

		seq, err = nextCounter(txn, feedCounter)
		if err != nil {
			return err
		}
		change, err := encodeChange(DiskChange{
			Seq:       seq,
			Type:      event.Create,
			Namespace: event.MessageNamespace,
			Message:   created,
		})
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		if err = txn.SetEntry(m.feedEntry(feedKey(seq), change)); err != nil {
			return err
		}
		return txn.SetEntry(m.feedEntry(chatFeedKey(message.ChatID, seq), change))
	})
	if err != nil {
		return domain.Message{}, err
	}

	m.log.Debug("Message stored", "chat_id", created.ChatID, "message_id", created.ID, "seq", seq)
	m.feed.notify()
	return fromDiskMessage(created), nil
}

func (m *MessageRepository) feedEntry(key, value []byte) *badger.Entry {
	entry := badger.NewEntry(key, value)
	if m.feedRetention > 0 {
		entry = entry.WithTTL(m.feedRetention)
	}
	return entry
}

// ListMessages returns the messages of a chat in canonical order.
// It stops collecting messages once the configured limitMessages is reached,
// keeping the most recent ones.
func (m *MessageRepository) ListMessages(_ context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		if _, err := getChat(txn, chatID); err != nil {
			return err
		}

		prefix := messagePrefixFor(chatID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the greatest key under the prefix.
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			var message DiskMessage
			err := it.Item().Value(func(val []byte) error {
				var err error
				message, err = decodeMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			messages = append(messages, fromDiskMessage(message))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Reverse(messages)
	return messages, nil
}

func lastCreatedAt(txn *badger.Txn, chatID domain.ChatID) (time.Time, bool, error) {
	prefix := messagePrefixFor(chatID)
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	it.Seek(append(prefix, 0xFF))
	if !it.ValidForPrefix(prefix) {
		return time.Time{}, false, nil
	}
	var message DiskMessage
	err := it.Item().Value(func(val []byte) error {
		var err error
		message, err = decodeMessage(val)
		return err
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return message.CreatedAt, true, nil
}
