// Package metrics exposes Prometheus instrumentation for the HTTP layer,
// event creation and image uploads.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PratikDhanave/dev-event-hub/internal/imagehost"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	eventsCreated  prometheus.Counter
	createFailures *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devevent",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "devevent",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.eventsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "devevent",
		Name:      "events_created_total",
		Help:      "Events successfully stored",
	})
	m.createFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devevent",
		Name:      "event_create_failures_total",
		Help:      "Rejected or failed event submissions by reason",
	}, []string{"reason"})
	m.uploadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "devevent",
		Name:      "image_upload_duration_seconds",
		Help:      "Time spent uploading event images",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"result"})

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.eventsCreated,
		m.createFailures,
		m.uploadDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the Prometheus exposition format, or 404 when m is nil.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests. It is nil for a nil *Metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Middleware records count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) EventCreated() {
	if m == nil {
		return
	}
	m.eventsCreated.Inc()
}

// CreateFailed counts a failed submission. reason is one of
// invalid, missing_image, upload, duplicate, store.
func (m *Metrics) CreateFailed(reason string) {
	if m == nil {
		return
	}
	m.createFailures.WithLabelValues(reason).Inc()
}

// InstrumentUploader wraps u so every upload is timed.
func (m *Metrics) InstrumentUploader(u imagehost.Uploader) imagehost.Uploader {
	if m == nil {
		return u
	}
	return &timedUploader{next: u, hist: m.uploadDuration}
}

type timedUploader struct {
	next imagehost.Uploader
	hist *prometheus.HistogramVec
}

func (t *timedUploader) Upload(ctx context.Context, data []byte, folder string) (*imagehost.Result, error) {
	start := time.Now()
	res, err := t.next.Upload(ctx, data, folder)

	result := "ok"
	if err != nil {
		result = "error"
	}
	t.hist.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return res, err
}
