package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type recordedStatus struct {
	mu       sync.Mutex
	statuses []healthpb.HealthCheckResponse_ServingStatus
}

func (r *recordedStatus) SetServingStatus(_ string, status healthpb.HealthCheckResponse_ServingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordedStatus) get() []healthpb.HealthCheckResponse_ServingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]healthpb.HealthCheckResponse_ServingStatus(nil), r.statuses...)
}

func TestHealthProbeWorker_Reports_Transitions_Only(t *testing.T) {
	req := require.New(t)
	recorder := &recordedStatus{}

	// Given a dependency healthy, then down, then back
	var calls atomic.Int32
	probe := func(context.Context) error {
		switch n := calls.Add(1); {
		case n == 3 || n == 4:
			return fmt.Errorf("store closed")
		default:
			return nil
		}
	}

	worker := NewHealthProbeWorker(slog.Default(), recorder, "chat-live", probe, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool { return calls.Load() >= 6 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	req.NoError(<-done)

	// Then each change is reported once
	req.Equal([]healthpb.HealthCheckResponse_ServingStatus{
		healthpb.HealthCheckResponse_SERVING,
		healthpb.HealthCheckResponse_NOT_SERVING,
		healthpb.HealthCheckResponse_SERVING,
	}, recorder.get())
}
