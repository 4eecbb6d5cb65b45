// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_translation"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Utterance metrics
	UtterancesPublished *prometheus.CounterVec
	UtterancesReceived  prometheus.Counter
	UtterancesDropped   *prometheus.CounterVec

	// Caption queue metrics
	QueueDepth      prometheus.Gauge
	CaptionsShown   prometheus.Counter
	CaptionsDegraded prometheus.Counter
	DrainLatency    prometheus.Histogram

	// Translation metrics
	TranslationAttempts *prometheus.CounterVec
	TranslationLatency  *prometheus.HistogramVec
	TranslationFallback prometheus.Counter
	TranslationNoop     prometheus.Counter

	// Synthesis metrics
	SynthesisRequests    prometheus.Counter
	SynthesisInterrupted prometheus.Counter
	SynthesisDropped     prometheus.Counter

	// Transport publish metrics
	PublishTotal   *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec

	// Room metrics
	RoomsCreated  prometheus.Counter
	TokensIssued  prometheus.Counter
	JoinFailures  *prometheus.CounterVec
	SummaryCalls  *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		UtterancesPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_published_total",
			Help:      "Total number of finalized utterances published per room",
		}, []string{"room"}),
		UtterancesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_received_total",
			Help:      "Total number of utterances received by consumers",
		}),
		UtterancesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_dropped_total",
			Help:      "Total number of utterances dropped before enqueue",
		}, []string{"reason"}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "caption_queue_depth",
			Help:      "Current number of utterances waiting in the caption queue",
		}),
		CaptionsShown: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captions_shown_total",
			Help:      "Total number of captions displayed",
		}),
		CaptionsDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captions_degraded_total",
			Help:      "Total number of captions shown with the original text after translation failure",
		}),
		DrainLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "caption_drain_latency_seconds",
			Help:      "Time to process one caption queue item end to end",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		TranslationAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_attempts_total",
			Help:      "Total translation endpoint attempts by tier and outcome",
		}, []string{"tier", "outcome"}),
		TranslationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_latency_seconds",
			Help:      "Translation endpoint latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"tier"}),
		TranslationFallback: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_fallback_total",
			Help:      "Total times a fallback endpoint tier served a translation",
		}),
		TranslationNoop: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_noop_total",
			Help:      "Total translations returned unchanged from the source text",
		}),

		SynthesisRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_requests_total",
			Help:      "Total speech synthesis requests",
		}),
		SynthesisInterrupted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_interrupted_total",
			Help:      "Total syntheses cancelled by a newer utterance",
		}),
		SynthesisDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_dropped_total",
			Help:      "Total pending syntheses dropped by the retention policy",
		}),

		PublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of transport messages published",
		}, []string{"room"}),
		PublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total number of transport publish errors",
		}, []string{"room"}),
		PublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_latency_seconds",
			Help:      "Transport publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"room"}),

		RoomsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total rooms created",
		}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total access tokens issued",
		}),
		JoinFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_failures_total",
			Help:      "Total failed room joins",
		}, []string{"reason"}),
		SummaryCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_calls_total",
			Help:      "Total end-of-call summarization calls by outcome",
		}, []string{"outcome"}),
	}
}

// RecordUtterancePublished records a finalized utterance published to a room.
func (m *Metrics) RecordUtterancePublished(room string) {
	m.UtterancesPublished.WithLabelValues(room).Inc()
}

// RecordUtteranceReceived records an utterance received by a consumer.
func (m *Metrics) RecordUtteranceReceived() {
	m.UtterancesReceived.Inc()
}

// RecordUtteranceDropped records an utterance dropped before enqueue.
func (m *Metrics) RecordUtteranceDropped(reason string) {
	m.UtterancesDropped.WithLabelValues(reason).Inc()
}

// RecordCaptionShown records a displayed caption and whether it was degraded.
func (m *Metrics) RecordCaptionShown(degraded bool, drainSeconds float64) {
	m.CaptionsShown.Inc()
	m.DrainLatency.Observe(drainSeconds)
	if degraded {
		m.CaptionsDegraded.Inc()
	}
}

// RecordTranslationAttempt records one endpoint attempt.
func (m *Metrics) RecordTranslationAttempt(tier string, err error, latencySeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.TranslationAttempts.WithLabelValues(tier, outcome).Inc()
	m.TranslationLatency.WithLabelValues(tier).Observe(latencySeconds)
}

// RecordPublish records a transport publish attempt.
func (m *Metrics) RecordPublish(room string, err error, latencySeconds float64) {
	m.PublishTotal.WithLabelValues(room).Inc()
	m.PublishLatency.WithLabelValues(room).Observe(latencySeconds)
	if err != nil {
		m.PublishErrors.WithLabelValues(room).Inc()
	}
}

// RecordSummaryCall records an end-of-call summarization attempt.
func (m *Metrics) RecordSummaryCall(err error) {
	if err != nil {
		m.SummaryCalls.WithLabelValues("error").Inc()
		return
	}
	m.SummaryCalls.WithLabelValues("ok").Inc()
}
