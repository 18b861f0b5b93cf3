package repositories

import (
	"chat-live/contract"
	"chat-live/domain/event"
	"context"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.IChangeFeed = (*FeedRepository)(nil)

// FeedRepository reads the change feed written by MessageRepository.
// Entries live under feed:{seq} and feedc:{chat}:{seq}; both carry the full
// message so a subscriber never needs a second lookup.
type FeedRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu      sync.Mutex
	changed chan struct{}
}

func NewFeedRepository(db *badger.DB, log *slog.Logger) *FeedRepository {
	return &FeedRepository{db: db, log: log, changed: make(chan struct{})}
}

// Head returns the sequence of the last appended change, 0 for an empty feed.
func (f *FeedRepository) Head(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var head uint64
	err := f.db.View(func(txn *badger.Txn) error {
		var err error
		head, err = readCounter(txn, feedCounter)
		return err
	})
	return head, err
}

// ReadFrom scans the feed after the given sequence.
// A chat scoped filter scans only that chat's partition.
// A limit <= 0 means no limit.
func (f *FeedRepository) ReadFrom(ctx context.Context, after uint64, filter event.Filter, limit int) ([]event.Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(feedPrefix)
	seek := feedKey(after + 1)
	if filter.ChatID != 0 {
		prefix = chatFeedPrefixFor(filter.ChatID)
		seek = chatFeedKey(filter.ChatID, after+1)
	}

	var changes []event.Change
	err := f.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(changes) == limit {
				break
			}
			var change DiskChange
			err := it.Item().Value(func(val []byte) error {
				var err error
				change, err = decodeChange(val)
				return err
			})
			if err != nil {
				return err
			}
			c := fromDiskChange(change)
			if filter.Match(c) {
				changes = append(changes, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// Changed returns a channel closed by the next append.
// Callers must take the channel before reading so no append is missed.
func (f *FeedRepository) Changed() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changed
}

// notify wakes every waiter and arms a new channel.
func (f *FeedRepository) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.changed)
	f.changed = make(chan struct{})
}
