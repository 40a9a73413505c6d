package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once guards registration; the prometheus registry panics on duplicates.
	once sync.Once

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// route must be the route pattern (e.g. /share/:code), never the real
	// path, or label cardinality explodes.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// LinkResolutionsTotal counts share-link resolution attempts by outcome
	// (allow / expired / need_auth / deny / not_found).
	LinkResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_resolutions_total",
			Help: "Shareable-link resolution attempts by decision.",
		},
		[]string{"decision"},
	)

	// InvitationJobsTotal counts invitation enqueue attempts (ok / failed).
	InvitationJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invitation_jobs_total",
			Help: "Invitation queue enqueue attempts by result.",
		},
		[]string{"result"},
	)

	// CacheOperations tracks link-record cache lookups by layer and result
	// (hit / miss / hit_negative).
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_cache_operations_total",
			Help: "Link record cache operations by layer and result.",
		},
		[]string{"layer", "result"},
	)
)

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			LinkResolutionsTotal,
			InvitationJobsTotal,
			CacheOperations,
		)
	})
}
