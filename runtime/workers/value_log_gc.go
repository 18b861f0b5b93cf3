package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const defaultDiscardRatio = 0.5

// ValueLogGCWorker reclaims value log space left by expired feed entries
// and cursors.
type ValueLogGCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewValueLogGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *ValueLogGCWorker {
	return &ValueLogGCWorker{db: db, log: log, interval: interval}
}

func (w *ValueLogGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.collect(ctx); err != nil {
				return err
			}
		}
	}
}

// collect rewrites value log files until Badger reports nothing left to do.
func (w *ValueLogGCWorker) collect(ctx context.Context) error {
	rewritten := 0
	for ctx.Err() == nil {
		err := w.db.RunValueLogGC(defaultDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return err
		}
		rewritten++
	}
	if rewritten > 0 {
		w.log.Info("Value log garbage collected", "files", rewritten)
	}
	return nil
}
