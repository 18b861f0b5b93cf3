package repositories

import (
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Store groups the Badger backed repositories sharing one database.
type Store struct {
	db       *badger.DB
	Users    *UserRepository
	Chats    *ChatRepository
	Messages *MessageRepository
	Feed     *FeedRepository
}

func NewStore(db *badger.DB, log *slog.Logger, feedRetention time.Duration, limitMessages *int) *Store {
	feed := NewFeedRepository(db, log)
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Chats:    NewChatRepository(db),
		Messages: NewMessageRepository(db, log, feed, feedRetention, limitMessages),
		Feed:     feed,
	}
}

// Reset drops every key, counters included. Used by the seed command only.
func (s *Store) Reset() error {
	return s.db.DropAll()
}
