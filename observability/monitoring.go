package observability

import (
	"chat-live/domain"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const maxRecentMessages = 20

// RecentMessage is one line of the "latest messages" panel of the debug page.
type RecentMessage struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// MonitoringStats is the snapshot rendered by the debug inspector.
type MonitoringStats struct {
	ActiveStreams   int64           `json:"active_streams"`
	FramesSent      uint64          `json:"frames_sent"`
	FramesPerSecond float64         `json:"frames_per_second"`
	MessagesCreated uint64          `json:"messages_created"`
	FeedErrors      uint64          `json:"feed_errors"`
	Indexed         uint64          `json:"indexed"`
	Relayed         uint64          `json:"relayed"`
	RSSMb           uint64          `json:"rss_mb"`
	CPUPercent      float64         `json:"cpu_percent"`
	AllocMemMb      uint64          `json:"alloc_mem_mb"`
	NumGC           uint32          `json:"num_gc"`
	RecentMessages  []RecentMessage `json:"recent_messages"`
}

// MonitoringManager keeps live counters for the debug page and mirrors them
// into the Prometheus collectors.
type MonitoringManager struct {
	log     *slog.Logger
	metrics *Metrics

	mu          sync.RWMutex
	latestStats MonitoringStats
	lastCheck   time.Time
	lastFrames  uint64

	activeStreams   atomic.Int64
	framesSent      atomic.Uint64
	messagesCreated atomic.Uint64
	feedErrors      atomic.Uint64
	indexed         atomic.Uint64
	relayed         atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger, metrics *Metrics) *MonitoringManager {
	return &MonitoringManager{
		log:       log,
		metrics:   metrics,
		lastCheck: time.Now(),
		latestStats: MonitoringStats{
			RecentMessages: make([]RecentMessage, 0),
		},
	}
}

func (mm *MonitoringManager) Metrics() *Metrics {
	return mm.metrics
}

func (mm *MonitoringManager) StreamOpened() {
	mm.activeStreams.Add(1)
	mm.metrics.ActiveStreams.Inc()
}

func (mm *MonitoringManager) StreamClosed() {
	mm.activeStreams.Add(-1)
	mm.metrics.ActiveStreams.Dec()
}

func (mm *MonitoringManager) IncrFramesSent() {
	mm.framesSent.Add(1)
	mm.metrics.FramesSent.Inc()
}

func (mm *MonitoringManager) IncrFeedErrors() {
	mm.feedErrors.Add(1)
	mm.metrics.FeedErrors.Inc()
}

func (mm *MonitoringManager) IncrIndexed() {
	mm.indexed.Add(1)
	mm.metrics.Indexed.Inc()
}

func (mm *MonitoringManager) IncrRelayed(n int) {
	mm.relayed.Add(uint64(n))
	mm.metrics.Relayed.Add(float64(n))
}

// MessageCreated counts the message and pushes it on the recent list,
// newest first.
func (mm *MonitoringManager) MessageCreated(message domain.Message) {
	mm.messagesCreated.Add(1)
	mm.metrics.MessagesCreated.Inc()

	mm.mu.Lock()
	defer mm.mu.Unlock()
	recent := RecentMessage{
		ID:        int64(message.ID),
		ChatID:    int64(message.ChatID),
		Author:    message.Author.Name,
		Text:      message.Text,
		Timestamp: message.CreatedAt.Format("15:04:05"),
	}
	mm.latestStats.RecentMessages = append([]RecentMessage{recent}, mm.latestStats.RecentMessages...)
	if len(mm.latestStats.RecentMessages) > maxRecentMessages {
		mm.latestStats.RecentMessages = mm.latestStats.RecentMessages[:maxRecentMessages]
	}
}

// SetProcessStats records the last sample taken by the process stats worker.
func (mm *MonitoringManager) SetProcessStats(rss uint64, cpu float64) {
	mm.metrics.ProcessRSS.Set(float64(rss))
	mm.metrics.ProcessCPU.Set(cpu)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.RSSMb = rss / 1024 / 1024
	mm.latestStats.CPUPercent = cpu
}

// Refresh recomputes the derived figures: frame rate since the previous
// refresh and Go memory stats.
func (mm *MonitoringManager) Refresh() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := time.Now()
	frames := mm.framesSent.Load()
	if elapsed := now.Sub(mm.lastCheck).Seconds(); elapsed > 0 {
		mm.latestStats.FramesPerSecond = float64(frames-mm.lastFrames) / elapsed
	}
	mm.lastCheck, mm.lastFrames = now, frames

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC

	mm.log.Debug("Stats refreshed",
		"active_streams", mm.activeStreams.Load(),
		"frames_per_second", mm.latestStats.FramesPerSecond,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

// GetLatest returns a copy of the current snapshot.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	stats := mm.latestStats
	stats.RecentMessages = append([]RecentMessage(nil), mm.latestStats.RecentMessages...)
	stats.ActiveStreams = mm.activeStreams.Load()
	stats.FramesSent = mm.framesSent.Load()
	stats.MessagesCreated = mm.messagesCreated.Load()
	stats.FeedErrors = mm.feedErrors.Load()
	stats.Indexed = mm.indexed.Load()
	stats.Relayed = mm.relayed.Load()
	return stats
}
