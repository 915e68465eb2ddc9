// Package metrics registers the Prometheus instruments for ingestion and
// snapshot builds on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meatflow"

var durationBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}

type Metrics struct {
	registry *prometheus.Registry

	RecordsLoaded    prometheus.Gauge
	RecordsIngested  *prometheus.CounterVec
	SnapshotBuilds   *prometheus.CounterVec
	SnapshotDuration prometheus.Histogram
	EmptySnapshots   prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

// New creates the metrics and registers them, with Go and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Trade records held in memory by the engine.",
		}),
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Trade records read by the collector.",
		}, []string{"status"}),
		SnapshotBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_builds_total",
			Help:      "Snapshot requests by cache outcome.",
		}, []string{"cache"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_build_duration_seconds",
			Help:      "Time spent computing a snapshot on cache miss.",
			Buckets:   durationBuckets,
		}),
		EmptySnapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_snapshots_total",
			Help:      "Snapshots with no data for the selection.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RecordsLoaded,
		m.RecordsIngested,
		m.SnapshotBuilds,
		m.SnapshotDuration,
		m.EmptySnapshots,
		m.HTTPRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
