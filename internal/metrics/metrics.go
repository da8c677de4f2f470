// Package metrics exposes Prometheus collectors for scans and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/scan"
)

const namespace = "snapcal"

// Metrics implements scan.Observer. Each instance owns its registry so tests
// can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	scansInFlight   prometheus.Gauge
	scans           *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	itemsIdentified prometheus.Histogram
	lookups         *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scansInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "inflight",
			Help:      "Scans currently running.",
		}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "total",
			Help:      "Finished scans by outcome.",
		}, []string{"outcome"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "End-to-end scan duration.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
		}),
		itemsIdentified: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "items_identified",
			Help:      "Food items identified per photo.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nutrition",
			Name:      "lookups_total",
			Help:      "Nutrition lookups by status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.scansInFlight,
		m.scans,
		m.scanDuration,
		m.itemsIdentified,
		m.lookups,
		m.httpRequests,
		m.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ScanStarted() {
	m.scansInFlight.Inc()
}

func (m *Metrics) ItemsIdentified(n int) {
	m.itemsIdentified.Observe(float64(n))
}

func (m *Metrics) LookupFinished(_ domain.IdentifiedFoodItem, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.lookups.WithLabelValues(status).Inc()
}

func (m *Metrics) ScanFinished(_ *domain.ScanResult, err error, elapsed time.Duration) {
	m.scansInFlight.Dec()
	m.scans.WithLabelValues(outcome(err)).Inc()
	m.scanDuration.Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request. route is the matched mux pattern,
// never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var scanErr *scan.Error
	if errors.As(err, &scanErr) {
		return scanErr.Kind.String()
	}
	return scan.KindUnknown.String()
}
