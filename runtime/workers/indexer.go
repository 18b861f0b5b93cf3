package workers

import (
	"chat-live/contract"
	"chat-live/domain/event"
	"chat-live/observability"
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
)

const IndexerCursor = "worker:indexer"

// IndexerWorker feeds the search index from the change feed, tagging every
// message with the language detected from its text.
type IndexerWorker struct {
	consumer   *FeedConsumer
	index      contract.IMessageIndex
	monitoring *observability.MonitoringManager
	log        *slog.Logger
}

func NewIndexerWorker(log *slog.Logger, feed contract.IChangeFeed, cursors contract.ICursorStore,
	index contract.IMessageIndex, monitoring *observability.MonitoringManager, refreshInterval time.Duration) *IndexerWorker {
	w := &IndexerWorker{index: index, monitoring: monitoring, log: log}
	w.consumer = NewFeedConsumer(log, IndexerCursor, feed, cursors, 0, refreshInterval, w.handle)
	return w
}

func (w *IndexerWorker) Run(ctx context.Context) error {
	return w.consumer.Run(ctx)
}

func (w *IndexerWorker) handle(ctx context.Context, changes []event.Change) error {
	for _, change := range changes {
		if err := w.index.Index(ctx, change.Message, DetectLang(change.Message.Text)); err != nil {
			return err
		}
		w.monitoring.IncrIndexed()
	}
	w.log.Debug("Messages indexed", "count", len(changes), "last_seq", changes[len(changes)-1].Seq)
	return nil
}

// DetectLang returns the ISO 639-1 code of text, empty when unknown.
func DetectLang(text string) string {
	return whatlanggo.Detect(text).Lang.Iso6391()
}
