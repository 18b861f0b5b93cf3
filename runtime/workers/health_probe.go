package workers

import (
	"context"
	"log/slog"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// statusSetter is satisfied by *health.Server.
type statusSetter interface {
	SetServingStatus(service string, servingStatus healthpb.HealthCheckResponse_ServingStatus)
}

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// HealthProbeWorker flips the gRPC health status of a service according to probe.
type HealthProbeWorker struct {
	log      *slog.Logger
	health   statusSetter
	service  string
	probe    Probe
	interval time.Duration
}

func NewHealthProbeWorker(log *slog.Logger, health statusSetter, service string, probe Probe, interval time.Duration) *HealthProbeWorker {
	return &HealthProbeWorker{log: log, health: health, service: service, probe: probe, interval: interval}
}

func (w *HealthProbeWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last healthpb.HealthCheckResponse_ServingStatus
	for {
		status := healthpb.HealthCheckResponse_SERVING
		if err := w.probe(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			status = healthpb.HealthCheckResponse_NOT_SERVING
			w.log.Warn("Health probe failed", "service", w.service, "error", err)
		}
		if status != last {
			w.log.Info("Health status changed", "service", w.service, "status", status.String())
			w.health.SetServingStatus(w.service, status)
			last = status
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
