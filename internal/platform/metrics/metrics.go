package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the curve analysis service.
type Metrics struct {
	registry                 *prometheus.Registry
	requestsTotal            *prometheus.CounterVec
	errorsTotal              *prometheus.CounterVec
	recordingsAnalyzedTotal  prometheus.Counter
	curvesDetectedTotal      prometheus.Counter
	candidatesDiscardedTotal prometheus.Counter
	degradedResolutionsTotal prometheus.Counter
	loadedRecordings         prometheus.Gauge
}

// New creates and registers Prometheus metrics for the service.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bakecurve_requests_total",
		Help: "Total number of HTTP requests received",
	}, []string{"method", "route"})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bakecurve_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	}, []string{"route", "class"})
	recordingsAnalyzedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bakecurve_recordings_analyzed_total",
		Help: "Total number of recordings successfully analyzed",
	})
	curvesDetectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bakecurve_curves_detected_total",
		Help: "Total number of baking curves retained across all analyses",
	})
	candidatesDiscardedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bakecurve_candidates_discarded_total",
		Help: "Total number of candidate curves discarded as too short or too cool",
	})
	degradedResolutionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bakecurve_degraded_resolutions_total",
		Help: "Total number of analyses whose sensor role resolution fell back to a naive split",
	})
	loadedRecordings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bakecurve_loaded_recordings",
		Help: "Number of recordings currently held in memory",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		recordingsAnalyzedTotal,
		curvesDetectedTotal,
		candidatesDiscardedTotal,
		degradedResolutionsTotal,
		loadedRecordings,
	)

	return &Metrics{
		registry:                 registry,
		requestsTotal:            requestsTotal,
		errorsTotal:              errorsTotal,
		recordingsAnalyzedTotal:  recordingsAnalyzedTotal,
		curvesDetectedTotal:      curvesDetectedTotal,
		candidatesDiscardedTotal: candidatesDiscardedTotal,
		degradedResolutionsTotal: degradedResolutionsTotal,
		loadedRecordings:         loadedRecordings,
	}
}

// IncRequests increments the request counter for method and route pattern.
func (m *Metrics) IncRequests(method, route string) {
	m.requestsTotal.WithLabelValues(method, route).Inc()
}

// IncErrors increments the errors counter; class is "4xx" or "5xx".
func (m *Metrics) IncErrors(route, class string) {
	m.errorsTotal.WithLabelValues(route, class).Inc()
}

// IncRecordingsAnalyzed increments the analyzed recordings counter.
func (m *Metrics) IncRecordingsAnalyzed() {
	m.recordingsAnalyzedTotal.Inc()
}

// AddCurvesDetected adds n retained curves.
func (m *Metrics) AddCurvesDetected(n int) {
	m.curvesDetectedTotal.Add(float64(n))
}

// AddCandidatesDiscarded adds n discarded candidates.
func (m *Metrics) AddCandidatesDiscarded(n int) {
	m.candidatesDiscardedTotal.Add(float64(n))
}

// IncDegradedResolutions increments the degraded role resolution counter.
func (m *Metrics) IncDegradedResolutions() {
	m.degradedResolutionsTotal.Inc()
}

// SetLoadedRecordings sets the loaded recordings gauge.
func (m *Metrics) SetLoadedRecordings(n int) {
	m.loadedRecordings.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. loaded recordings).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
