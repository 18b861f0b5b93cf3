package repositories

import (
	"chat-live/contract"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.ICursorStore = (*CursorRepository)(nil)

// CursorRepository keeps named feed positions in Badger.
// Every save rewrites the entry with a fresh TTL, so a cursor lives for the
// retention window after its last acknowledgement and then expires on its own.
type CursorRepository struct {
	db        *badger.DB
	log       *slog.Logger
	retention time.Duration
}

func NewCursorRepository(db *badger.DB, log *slog.Logger, retention time.Duration) *CursorRepository {
	return &CursorRepository{db: db, log: log, retention: retention}
}

func (c *CursorRepository) Load(ctx context.Context, name string) (uint64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	var seq uint64
	err := c.db.View(func(txn *badger.Txn) error {
		val, err := getValue(txn, cursorKey(name))
		if err != nil {
			return err
		}
		seq, err = decodeCounter(val)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}

func (c *CursorRepository) Save(ctx context.Context, name string, seq uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cursorKey(name), encodeCounter(seq))
		if c.retention > 0 {
			entry = entry.WithTTL(c.retention)
		}
		return txn.SetEntry(entry)
	})
}

func (c *CursorRepository) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cursorKey(name))
	})
}
