package workers

import (
	"chat-live/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcessStatsWorker_Samples_Current_Process(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitoringManager(slog.Default(), observability.NewMetrics())
	worker := NewProcessStatsWorker(slog.Default(), monitoring, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool { return monitoring.GetLatest().RSSMb > 0 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	req.NoError(<-done)
}
