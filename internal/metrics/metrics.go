// Package metrics exposes Prometheus instrumentation for the Micropub pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons recorded on raido_micropub_requests_failed_total.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonDecode       = "decode"
	ReasonValidation   = "validation"
	ReasonUnsupported  = "unsupported"
	ReasonInternal     = "internal"
)

// Metrics holds the application's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PostsPublished *prometheus.CounterVec
	RequestsFailed *prometheus.CounterVec
	RenderDuration prometheus.Histogram
}

// New registers all collectors, including the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PostsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raido_posts_published_total",
			Help: "Posts created through the Micropub endpoint, by post type",
		}, []string{"post_type"}),
		RequestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raido_micropub_requests_failed_total",
			Help: "Micropub requests rejected, by reason",
		}, []string{"reason"}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "raido_render_duration_seconds",
			Help:    "Time to classify and render one mf2 document",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

// Handler returns the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPublished counts a stored post.
func (m *Metrics) RecordPublished(postType string) {
	if m == nil {
		return
	}
	m.PostsPublished.WithLabelValues(postType).Inc()
}

// RecordFailure counts a rejected Micropub request.
func (m *Metrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.RequestsFailed.WithLabelValues(reason).Inc()
}

// ObserveRender records how long rendering took since start.
func (m *Metrics) ObserveRender(start time.Time) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(time.Since(start).Seconds())
}
