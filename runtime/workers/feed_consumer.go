package workers

import (
	"chat-live/contract"
	"chat-live/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// FeedHandler processes one batch of changes. An error leaves the durable
// cursor where it was, so the batch is handled again after the restart.
type FeedHandler func(ctx context.Context, changes []event.Change) error

// FeedConsumer follows the change feed from a durable named cursor.
// Delivery is at least once: the cursor is saved after the handler succeeded.
type FeedConsumer struct {
	log             *slog.Logger
	name            string
	feed            contract.IChangeFeed
	cursors         contract.ICursorStore
	filter          event.Filter
	batchSize       int
	refreshInterval time.Duration
	handle          FeedHandler
}

// NewFeedConsumer builds a consumer named after its cursor. A consumer
// without a stored cursor starts from the oldest retained change.
// refreshInterval re-saves the cursor while idle so it outlives the cursor
// retention window.
func NewFeedConsumer(log *slog.Logger, name string, feed contract.IChangeFeed, cursors contract.ICursorStore,
	batchSize int, refreshInterval time.Duration, handle FeedHandler) *FeedConsumer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &FeedConsumer{
		log:             log.With("consumer", name),
		name:            name,
		feed:            feed,
		cursors:         cursors,
		filter:          event.AllMessagesCreated(),
		batchSize:       batchSize,
		refreshInterval: refreshInterval,
		handle:          handle,
	}
}

func (c *FeedConsumer) Run(ctx context.Context) error {
	after, err := c.start(ctx)
	if err != nil {
		return err
	}
	c.log.Info("Feed consumer started", "after", after)

	var refresh <-chan time.Time
	if c.refreshInterval > 0 {
		ticker := time.NewTicker(c.refreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}

	for {
		changed := c.feed.Changed()
		changes, err := c.feed.ReadFrom(ctx, after, c.filter, c.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read feed after %d: %w", after, err)
		}

		if len(changes) > 0 {
			if err = c.handle(ctx, changes); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("handle %d changes after %d: %w", len(changes), after, err)
			}
			after = changes[len(changes)-1].Seq
			if err = c.cursors.Save(ctx, c.name, after); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("save cursor %s: %w", c.name, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			c.log.Debug("Context done, stopping feed consumer")
			return nil
		case <-changed:
		case <-refresh:
			if err = c.cursors.Save(ctx, c.name, after); err != nil && ctx.Err() == nil {
				return fmt.Errorf("refresh cursor %s: %w", c.name, err)
			}
		}
	}
}

func (c *FeedConsumer) start(ctx context.Context) (uint64, error) {
	head, err := c.feed.Head(ctx)
	if err != nil {
		return 0, fmt.Errorf("read feed head: %w", err)
	}
	after, found, err := c.cursors.Load(ctx, c.name)
	if err != nil {
		return 0, fmt.Errorf("load cursor %s: %w", c.name, err)
	}
	if found && after > head {
		c.log.Warn("Cursor ahead of feed head, starting over", "after", after, "head", head)
		return 0, nil
	}
	return after, nil
}
