package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tour_api_requests_total",
			Help: "Requests sent to the remote tour API",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tour_api_request_duration_seconds",
			Help:    "Latency of remote tour API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AccumulationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tour_accumulation_runs_total",
			Help: "Pagination runs by result",
		},
		[]string{"result"},
	)

	AccumulationPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tour_accumulation_pages",
			Help:    "Pages requested per successful pagination run",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	ListingSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tour_listing_source_total",
			Help: "Where listing requests were served from",
		},
		[]string{"source"},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Listing sources.
const (
	SourceCache    = "cache"
	SourceSnapshot = "snapshot"
	SourceUpstream = "upstream"
)
