package workers

import (
	"chat-live/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStatsWorker samples memory and CPU of the current process and
// refreshes the monitoring snapshot on every tick.
type ProcessStatsWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewProcessStatsWorker(log *slog.Logger, monitoring *observability.MonitoringManager, interval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting process stats worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.monitoring.SetProcessStats(rss, cpu)
			w.monitoring.Refresh()
		}
	}
}

// selfStats returns the resident set size in bytes and the CPU percentage.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
