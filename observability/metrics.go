package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat_live"

// Metrics owns a dedicated registry so tests can build as many as they need.
type Metrics struct {
	registry        *prometheus.Registry
	ActiveStreams   prometheus.Gauge
	FramesSent      prometheus.Counter
	MessagesCreated prometheus.Counter
	FeedErrors      prometheus.Counter
	Indexed         prometheus.Counter
	Relayed         prometheus.Counter
	ProcessRSS      prometheus.Gauge
	ProcessCPU      prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Open SSE message streams.",
		}),
		FramesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Message frames written to SSE clients.",
		}),
		MessagesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_created_total",
			Help:      "Messages persisted through the ingest endpoint.",
		}),
		FeedErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Streams ended because the change feed was unavailable.",
		}),
		Indexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_indexed_total",
			Help:      "Messages added to the search index.",
		}),
		Relayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Messages published to Kafka.",
		}),
		ProcessRSS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident set size sampled by the stats worker.",
		}),
		ProcessCPU: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage sampled by the stats worker.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
