package workers

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/observability"
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

const RelayCursor = "worker:relay"

// RelayWorker republishes created messages to an external broker, one batch
// per feed read.
type RelayWorker struct {
	consumer   *FeedConsumer
	publisher  contract.IPublisher
	monitoring *observability.MonitoringManager
}

func NewRelayWorker(log *slog.Logger, feed contract.IChangeFeed, cursors contract.ICursorStore,
	publisher contract.IPublisher, monitoring *observability.MonitoringManager, refreshInterval time.Duration) *RelayWorker {
	w := &RelayWorker{publisher: publisher, monitoring: monitoring}
	w.consumer = NewFeedConsumer(log, RelayCursor, feed, cursors, 0, refreshInterval, w.handle)
	return w
}

func (w *RelayWorker) Run(ctx context.Context) error {
	return w.consumer.Run(ctx)
}

func (w *RelayWorker) handle(ctx context.Context, changes []event.Change) error {
	messages := lo.Map(changes, func(change event.Change, _ int) domain.Message { return change.Message })
	if err := w.publisher.Publish(ctx, messages...); err != nil {
		return err
	}
	w.monitoring.IncrRelayed(len(messages))
	return nil
}
