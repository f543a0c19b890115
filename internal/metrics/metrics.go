package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voicenews"

// Metrics holds the service collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	pipelineRequests *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	summaries        *prometheus.CounterVec
	audioWritten     prometheus.Counter
	audioPurged      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		pipelineRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_requests_total",
				Help:      "Pipeline operations by outcome.",
			},
			[]string{"operation", "outcome"}, // list, summarize, speak
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_fetch_seconds",
				Help:      "Latency of headline fetches from the news source.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source", "outcome"},
		),

		summaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summaries_total",
				Help:      "Article summaries by how they were produced.",
			},
			[]string{"mode"}, // passthrough, model, failed
		),

		audioWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_files_written_total",
			Help:      "Audio files produced by speech synthesis.",
		}),

		audioPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_files_purged_total",
			Help:      "Audio files removed by the retention purge.",
		}),
	}

	m.registry.MustRegister(
		m.pipelineRequests,
		m.fetchDuration,
		m.summaries,
		m.audioWritten,
		m.audioPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PipelineRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.pipelineRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) UpstreamFetch(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(source, outcome).Observe(d.Seconds())
}

func (m *Metrics) Summary(mode string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(mode).Inc()
}

func (m *Metrics) AudioWritten() {
	if m == nil {
		return
	}
	m.audioWritten.Inc()
}

func (m *Metrics) AudioPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.audioPurged.Add(float64(n))
}
