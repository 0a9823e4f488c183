// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "portfolio"

// Chat outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

type Metrics struct {
	Registry *prometheus.Registry

	ChatRequests         *prometheus.CounterVec
	ProviderDuration     prometheus.Histogram
	ContactSubmissions   *prometheus.CounterVec
	NotificationEmails   *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDurations *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		Registry:           r,
		ChatRequests:       newCounterVec(r, "chat_requests_total", "Chat requests by outcome", "outcome"),
		ProviderDuration:   newHistogram(r, "provider_request_duration_seconds", "Round trip time of LLM provider calls", prometheus.DefBuckets),
		ContactSubmissions: newCounterVec(r, "contact_submissions_total", "Contact form submissions by status", "status"),
		NotificationEmails: newCounterVec(r, "notification_emails_total", "Owner notification emails by status", "status"),
		HTTPRequests:       newCounterVec(r, "http_requests_total", "HTTP requests by method, route and status", "method", "route", "status"),
		HTTPRequestDurations: promauto.With(r).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func newCounterVec(r prometheus.Registerer, name, desc string, labels ...string) *prometheus.CounterVec {
	return promauto.With(r).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      desc,
		},
		labels,
	)
}

func newHistogram(r prometheus.Registerer, name, desc string, buckets []float64) prometheus.Histogram {
	return promauto.With(r).NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      desc,
		Buckets:   buckets,
	})
}
