package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestValueLogGCWorker_Stops_With_Context(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer func() { _ = db.Close() }()

	worker := NewValueLogGCWorker(db, logs.GetLoggerFromLevel(slog.LevelDebug), 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Nothing to rewrite on an empty database: the worker keeps ticking until cancelled
	req.NoError(worker.Run(ctx))
}
