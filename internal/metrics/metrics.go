// Package metrics exposes summarizer and HTTP activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements summary.Observer.
type Metrics struct {
	registry *prometheus.Registry

	filesTotal      *prometheus.CounterVec
	fileErrorsTotal prometheus.Counter
	intervalsTotal  *prometheus.CounterVec
	intervalSeconds *prometheus.HistogramVec
	speciesSeconds  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var _ summary.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with registry. A nil registry
// gets a fresh one.
func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry}

	m.filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batlog_files_summarized_total",
			Help: "Label files summarized, by final mode",
		},
		[]string{"mode"}, // process, skip, copy, merge
	)
	m.fileErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "batlog_file_errors_total",
		Help: "Label files that could not be read",
	})
	m.intervalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batlog_intervals_total",
			Help: "Labelled intervals parsed, by line kind",
		},
		[]string{"kind"},
	)
	m.intervalSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batlog_interval_duration_seconds",
			Help:    "Length of labelled intervals",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 7.5, 15, 30, 60},
		},
		[]string{"kind"},
	)
	m.speciesSeconds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batlog_species_seconds_total",
			Help: "Interval time credited to each species",
		},
		[]string{"species"},
	)
	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batlog_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"route", "status"},
	)
	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batlog_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	for _, c := range []prometheus.Collector{
		m.filesTotal, m.fileErrorsTotal, m.intervalsTotal, m.intervalSeconds,
		m.speciesSeconds, m.httpRequests, m.httpDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) FileSummarized(mode summary.Mode, _ int) {
	m.filesTotal.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) FileFailed(string, error) {
	m.fileErrorsTotal.Inc()
}

func (m *Metrics) IntervalParsed(kind string, d time.Duration) {
	m.intervalsTotal.WithLabelValues(kind).Inc()
	if d > 0 {
		m.intervalSeconds.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) SpeciesMatched(name string, d time.Duration) {
	m.speciesSeconds.WithLabelValues(name).Add(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument records the status and latency of every request under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
