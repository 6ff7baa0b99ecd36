package shared

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the bot backend.
// Each instance owns its registry so tests can build independent copies.
type Metrics struct {
	Registry *prometheus.Registry

	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	DatasetFetchesTotal *prometheus.CounterVec
	DatasetFetchLatency *prometheus.HistogramVec
	DatasetRecords      *prometheus.GaugeVec

	QuestionsRecordedTotal *prometheus.CounterVec
	AnswersDeliveredTotal  prometheus.Counter
	AnswerFailuresTotal    *prometheus.CounterVec
	ReconciliationRuns     *prometheus.CounterVec

	BotUpdatesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_cache_hits_total",
				Help: "Dataset reads served from cache.",
			},
			[]string{"dataset"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_cache_misses_total",
				Help: "Dataset reads that required an authoritative fetch.",
			},
			[]string{"dataset"},
		),
		DatasetFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_dataset_fetches_total",
				Help: "External dataset fetches by outcome (ok, error, cached_empty).",
			},
			[]string{"dataset", "outcome"},
		),
		DatasetFetchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meabot_dataset_fetch_seconds",
				Help:    "External dataset fetch latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"dataset"},
		),
		DatasetRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "meabot_dataset_records",
				Help: "Records held in cache per dataset after the last fetch.",
			},
			[]string{"dataset"},
		),
		QuestionsRecordedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_questions_recorded_total",
				Help: "Question submissions by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		AnswersDeliveredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "meabot_answers_delivered_total",
				Help: "Answers sent to their requesters.",
			},
		),
		AnswerFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_answer_failures_total",
				Help: "Answer delivery failures by reason (invalid_requester, send, mark).",
			},
			[]string{"reason"},
		),
		ReconciliationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_reconciliation_runs_total",
				Help: "Answer reconciliation runs by outcome (ok, error, skipped).",
			},
			[]string{"outcome"},
		),
		BotUpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meabot_bot_updates_total",
				Help: "Inbound chat updates by kind (command, callback, message, ignored).",
			},
			[]string{"kind"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DatasetFetchesTotal,
		m.DatasetFetchLatency,
		m.DatasetRecords,
		m.QuestionsRecordedTotal,
		m.AnswersDeliveredTotal,
		m.AnswerFailuresTotal,
		m.ReconciliationRuns,
		m.BotUpdatesTotal,
	)

	return m
}

// Handler returns an HTTP handler that serves the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
