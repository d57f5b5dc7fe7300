// ABOUTME: Prometheus metrics for decoding, playback and remote calls
// ABOUTME: Collectors are registered on a private registry served by the metrics server
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "voicenote"

// Metrics groups every collector the client exports
type Metrics struct {
	registry *prometheus.Registry

	decodes        *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	decodedSeconds prometheus.Histogram
	transitions    *prometheus.CounterVec
	playbackErrors prometheus.Counter
	remoteLatency  *prometheus.HistogramVec
	remoteErrors   *prometheus.CounterVec
	messages       *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decodes_total",
			Help:      "Successfully decoded voice notes by codec",
		}, []string{"codec"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Voice notes that could not be decoded, by failing stage",
		}, []string{"stage"}),
		decodedSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decoded_audio_seconds",
			Help:      "Duration of decoded voice notes",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_transitions_total",
			Help:      "Playback state transitions by resulting state",
		}, []string{"state"}),
		playbackErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_unavailable_total",
			Help:      "Play requests that failed because audio output was unavailable",
		}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_seconds",
			Help:      "Latency of remote chat and speech requests",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"op"}),
		remoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_errors_total",
			Help:      "Failed remote requests by operation",
		}, []string{"op"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Transcript messages by sender and kind",
		}, []string{"sender", "kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.decodes,
		m.decodeFailures,
		m.decodedSeconds,
		m.transitions,
		m.playbackErrors,
		m.remoteLatency,
		m.remoteErrors,
		m.messages,
	)
	return m
}

// Registry exposes the registry for serving and tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDecode records a successful decode
func (m *Metrics) RecordDecode(codec string, seconds float64) {
	m.decodes.WithLabelValues(codec).Inc()
	m.decodedSeconds.Observe(seconds)
}

// RecordDecodeFailure records a decode error at stage
func (m *Metrics) RecordDecodeFailure(stage string) {
	m.decodeFailures.WithLabelValues(stage).Inc()
}

// RecordTransition records a playback state change
func (m *Metrics) RecordTransition(state string) {
	m.transitions.WithLabelValues(state).Inc()
}

// RecordPlaybackUnavailable records a failed play request
func (m *Metrics) RecordPlaybackUnavailable() {
	m.playbackErrors.Inc()
}

// RecordRemote records one remote request
func (m *Metrics) RecordRemote(op string, started time.Time, err error) {
	m.remoteLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.remoteErrors.WithLabelValues(op).Inc()
	}
}

// RecordMessage records a transcript message
func (m *Metrics) RecordMessage(sender, kind string) {
	m.messages.WithLabelValues(sender, kind).Inc()
}
