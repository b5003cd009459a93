// Package telemetry owns the prometheus collectors exported on /metrics.
//
// All recording methods are nil-safe so components can run without metrics
// in tests and tools.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	Engagements       *prometheus.CounterVec
	AssociationSyncs  *prometheus.CounterVec
	DimensionsCreated *prometheus.CounterVec
	FeedRows          prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration panics.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route template, method and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"method", "route"}),
		Engagements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_engagements_total",
			Help: "Engagement increments applied to content.",
		}, []string{"type"}),
		AssociationSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "association_syncs_total",
			Help: "Junction table replacements by relation and outcome.",
		}, []string{"relation", "outcome"}),
		DimensionsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dimension_rows_created_total",
			Help: "Platform/interest rows created on first reference.",
		}, []string{"dimension"}),
		FeedRows: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "feed_rows",
			Help:    "Rows returned per persona feed query.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveEngagement(kind string, delta int64) {
	if m == nil || delta <= 0 {
		return
	}
	m.Engagements.WithLabelValues(kind).Add(float64(delta))
}

func (m *Metrics) ObserveSync(relation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AssociationSyncs.WithLabelValues(relation, outcome).Inc()
}

func (m *Metrics) ObserveDimensionCreated(dimension string) {
	if m == nil {
		return
	}
	m.DimensionsCreated.WithLabelValues(dimension).Inc()
}

func (m *Metrics) ObserveFeedRows(n int) {
	if m == nil {
		return
	}
	m.FeedRows.Observe(float64(n))
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
