package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds.
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// UploadPhaseFailures counts upload-pipeline failures by phase
	// (storing, translating, persisting).
	UploadPhaseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bim_upload_phase_failures_total",
			Help: "Total number of upload pipeline failures by phase",
		},
		[]string{"service", "phase"},
	)

	// UploadDurationHistogram records end-to-end upload pipeline duration.
	UploadDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bim_upload_duration_seconds",
			Help:    "Duration of successful upload pipeline runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"service", "mode"},
	)

	// TranslationPolls counts status polls against the translation service.
	TranslationPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bim_translation_polls_total",
			Help: "Total number of translation status polls",
		},
		[]string{"service", "outcome"},
	)
)

// HTTPMetrics holds configuration and state for metrics collection.
type HTTPMetrics struct {
	ServiceName string
	initialized bool
}

// NewHTTPMetrics creates a new metrics collector for a specific service.
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	m := &HTTPMetrics{ServiceName: serviceName}
	m.register()
	return m
}

func (m *HTTPMetrics) register() {
	if !m.initialized {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDurationHistogram)
		prometheus.MustRegister(UploadPhaseFailures)
		prometheus.MustRegister(UploadDurationHistogram)
		prometheus.MustRegister(TranslationPolls)
		m.initialized = true
	}
}

// Middleware records request count and duration for every route.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		RequestCounter.WithLabelValues(m.ServiceName, method, path, status).Inc()
		RequestDurationHistogram.WithLabelValues(m.ServiceName, method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveUploadFailure increments the phase-failure counter.
func (m *HTTPMetrics) ObserveUploadFailure(phase string) {
	UploadPhaseFailures.WithLabelValues(m.ServiceName, phase).Inc()
}

// ObserveUploadSuccess records a completed pipeline run.
func (m *HTTPMetrics) ObserveUploadSuccess(mode string, d time.Duration) {
	UploadDurationHistogram.WithLabelValues(m.ServiceName, mode).Observe(d.Seconds())
}

// ObserveTranslationPoll records a single poll outcome (pending, done, error).
func (m *HTTPMetrics) ObserveTranslationPoll(outcome string) {
	TranslationPolls.WithLabelValues(m.ServiceName, outcome).Inc()
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics.
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
