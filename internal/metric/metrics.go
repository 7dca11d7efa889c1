// Package metric holds the service's Prometheus metrics on a private
// registry.
package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/lexreview/internal/lexicon"
	"github.com/heartmarshall/lexreview/internal/stream"
)

const namespace = "lexreview"

// Metrics contains all service metrics.
type Metrics struct {
	registry *prometheus.Registry

	AnalyzerDuration *prometheus.HistogramVec
	AnalyzerFailures *prometheus.CounterVec
	AnalyzerRestarts *prometheus.CounterVec
	StreamUnits      *prometheus.CounterVec
	StreamSkipped    *prometheus.CounterVec

	RegistrySurfaces  prometheus.Gauge
	RegistryLemmas    prometheus.Gauge
	RegistrySightings prometheus.Gauge

	CallbackRequests *prometheus.CounterVec
}

// New creates the metrics and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AnalyzerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "analyzer",
				Name:      "roundtrip_seconds",
				Help:      "Time spent waiting for one analyzer response",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"pipe"},
		),

		AnalyzerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analyzer",
				Name:      "failures_total",
				Help:      "Analyzer round trips that failed",
			},
			[]string{"pipe"},
		),

		AnalyzerRestarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analyzer",
				Name:      "restarts_total",
				Help:      "Explicit analyzer restarts",
			},
			[]string{"pipe"},
		),

		StreamUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "units_total",
				Help:      "Lexical units seen in analyzer output",
			},
			[]string{"pipe"},
		),

		StreamSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "skipped_total",
				Help:      "Stream fragments skipped by the tokenizer",
			},
			[]string{"pipe", "reason"},
		),

		RegistrySurfaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lexicon",
			Name:      "surfaces",
			Help:      "Distinct surface forms recorded",
		}),

		RegistryLemmas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lexicon",
			Name:      "lemmas",
			Help:      "Distinct lemmas recorded",
		}),

		RegistrySightings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lexicon",
			Name:      "sightings",
			Help:      "Sentences recorded over all surfaces",
		}),

		CallbackRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "callback",
				Name:      "requests_total",
				Help:      "Callback requests by action and status code",
			},
			[]string{"action", "status"},
		),
	}

	m.registry.MustRegister(
		m.AnalyzerDuration,
		m.AnalyzerFailures,
		m.AnalyzerRestarts,
		m.StreamUnits,
		m.StreamSkipped,
		m.RegistrySurfaces,
		m.RegistryLemmas,
		m.RegistrySightings,
		m.CallbackRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnalyzer records one analyzer round trip.
func (m *Metrics) ObserveAnalyzer(pipe string, d time.Duration, err error) {
	m.AnalyzerDuration.WithLabelValues(pipe).Observe(d.Seconds())
	if err != nil {
		m.AnalyzerFailures.WithLabelValues(pipe).Inc()
	}
}

// ObserveTokens records what the tokenizer saw in one response.
func (m *Metrics) ObserveTokens(pipe string, stats stream.Stats) {
	m.StreamUnits.WithLabelValues(pipe).Add(float64(stats.Units))
	m.StreamSkipped.WithLabelValues(pipe, "empty_surface").Add(float64(stats.EmptySurfaces))
	m.StreamSkipped.WithLabelValues(pipe, "rejected_reading").Add(float64(stats.RejectedReadings))
	m.StreamSkipped.WithLabelValues(pipe, "dropped_surface").Add(float64(stats.DroppedSurfaces))
}

// ObserveRegistry updates the registry size gauges.
func (m *Metrics) ObserveRegistry(stats lexicon.Stats) {
	m.RegistrySurfaces.Set(float64(stats.Surfaces))
	m.RegistryLemmas.Set(float64(stats.Lemmas))
	m.RegistrySightings.Set(float64(stats.Sightings))
}

// IncRestart counts an explicit restart of pipe.
func (m *Metrics) IncRestart(pipe string) {
	m.AnalyzerRestarts.WithLabelValues(pipe).Inc()
}

// RecordCallback counts one callback request.
func (m *Metrics) RecordCallback(action string, status int) {
	m.CallbackRequests.WithLabelValues(action, strconv.Itoa(status)).Inc()
}
