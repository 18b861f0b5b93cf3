package repositories

import (
	"chat-live/domain"
	chatErrors "chat-live/errors"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const maxConflictRetries = 5

// update runs fn in a read-write transaction, retrying on write conflicts.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func readCounter(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var value uint64
	err = item.Value(func(val []byte) error {
		value, err = decodeCounter(val)
		return err
	})
	return value, err
}

// nextCounter increments the counter inside txn and returns the new value.
func nextCounter(txn *badger.Txn, key string) (uint64, error) {
	current, err := readCounter(txn, key)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err = txn.Set([]byte(key), encodeCounter(next)); err != nil {
		return 0, err
	}
	return next, nil
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func getUser(txn *badger.Txn, id domain.UserID) (DiskUser, error) {
	val, err := getValue(txn, userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return DiskUser{}, fmt.Errorf("user %d: %w", id, chatErrors.ErrNotFound)
	}
	if err != nil {
		return DiskUser{}, err
	}
	return decodeUser(val)
}

func getChat(txn *badger.Txn, id domain.ChatID) (DiskChat, error) {
	val, err := getValue(txn, chatKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return DiskChat{}, fmt.Errorf("chat %d: %w", id, chatErrors.ErrNotFound)
	}
	if err != nil {
		return DiskChat{}, err
	}
	return decodeChat(val)
}

// resolveChat loads a chat and its participants.
func resolveChat(txn *badger.Txn, id domain.ChatID) (domain.Chat, error) {
	diskChat, err := getChat(txn, id)
	if err != nil {
		return domain.Chat{}, err
	}
	chat := domain.Chat{ID: domain.ChatID(diskChat.ID)}
	for _, participantID := range diskChat.Participants {
		user, err := getUser(txn, domain.UserID(participantID))
		if err != nil {
			return domain.Chat{}, err
		}
		chat.Participants = append(chat.Participants, fromDiskUser(user))
	}
	return chat, nil
}
