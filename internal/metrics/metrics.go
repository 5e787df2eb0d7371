// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route, method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction_house",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests handled.",
	}, []string{"route", "method", "status"})

	// HTTPLatency observes request latency by route and method.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auction_house",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// BidOutcomes counts bid submissions by result code.
	BidOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction_house",
		Name:      "bid_submissions_total",
		Help:      "Bid submissions by outcome.",
	}, []string{"outcome"})

	// AuctionsClosed counts successful close operations.
	AuctionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auction_house",
		Name:      "auctions_closed_total",
		Help:      "Auctions transitioned to closed.",
	})
)

// ObserveBid records the outcome of one SubmitBid call; code is "accepted" or an error code.
func ObserveBid(code string) {
	BidOutcomes.WithLabelValues(code).Inc()
}
