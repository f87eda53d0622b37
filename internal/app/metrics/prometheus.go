package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_relay"

// Metrics contains the Prometheus collectors for the transcription pipeline
type Metrics struct {
	// Transcription metrics
	TranscriptionRequests prometheus.Counter
	TranscriptionOutcomes *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	TranscodeDuration     prometheus.Histogram

	// Credential metrics
	TokenRefreshes *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_requests_total",
			Help:      "Total number of transcription pipeline runs",
		}),
		TranscriptionOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_outcomes_total",
			Help:      "Transcription results by outcome kind",
		}, []string{"outcome"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "End-to-end pipeline duration",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		TranscodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcode_duration_seconds",
			Help:      "ffmpeg transcoding duration",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Access token issuance calls by result",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RecordOutcome records one finished pipeline run
func (m *Metrics) RecordOutcome(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TranscriptionRequests.Inc()
	m.TranscriptionOutcomes.WithLabelValues(outcome).Inc()
	m.TranscriptionDuration.Observe(elapsed.Seconds())
}

// RecordTranscode records one ffmpeg invocation
func (m *Metrics) RecordTranscode(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TranscodeDuration.Observe(elapsed.Seconds())
}

// RecordTokenRefresh records one credential issuance attempt
func (m *Metrics) RecordTokenRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.TokenRefreshes.WithLabelValues(result).Inc()
}
