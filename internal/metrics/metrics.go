// Package metrics expone los contadores del pipeline de personas en Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reddit_persona"

// Etapas del pipeline.
const (
	StageCollect    = "collect"
	StageSynthesize = "synthesize"
	StageEnrich     = "enrich"
	StageTopics     = "topics"
	StageSave       = "save"
)

// Metrics agrupa los instrumentos del servicio. Un *Metrics nil no registra nada.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	generations   *prometheus.CounterVec
	enrichment    *prometheus.CounterVec
	topics        *prometheus.CounterVec
	rateLimited   prometheus.Counter
}

// New registra los instrumentos en reg; usar prometheus.NewRegistry() en tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each persona pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Persona generations by result.",
		}, []string{"result"}),
		enrichment: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_total",
			Help:      "Identity enrichment outcomes.",
		}, []string{"outcome"}),
		topics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topic_labeling_total",
			Help:      "Topic labeling runs by result.",
		}, []string{"result"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Generation requests rejected by the rate limiter.",
		}),
	}
}

func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Generation(result string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(result).Inc()
}

func (m *Metrics) Enrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichment.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Topics(labeled bool) {
	if m == nil {
		return
	}
	result := "empty"
	if labeled {
		result = "labeled"
	}
	m.topics.WithLabelValues(result).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
