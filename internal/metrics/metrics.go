package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	AIRequests       *prometheus.CounterVec
	AIDuration       *prometheus.HistogramVec
	PlanCacheLookups *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrivision_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutrivision_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrivision_ai_requests_total",
			Help: "Total number of AI collaborator calls by feature and outcome",
		}, []string{"feature", "outcome"}),

		AIDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutrivision_ai_request_duration_seconds",
			Help:    "Duration of AI collaborator calls",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"feature"}),

		PlanCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrivision_plan_cache_lookups_total",
			Help: "Plan reuse lookups by plan kind and result",
		}, []string{"kind", "result"}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveAI(feature string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AIRequests.WithLabelValues(feature, outcome).Inc()
	m.AIDuration.WithLabelValues(feature).Observe(d.Seconds())
}

func (m *Metrics) PlanCache(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PlanCacheLookups.WithLabelValues(kind, result).Inc()
}
