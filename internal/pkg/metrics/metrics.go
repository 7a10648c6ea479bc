// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Order placement attempts by outcome",
	}, []string{"outcome"})

	CouponsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_coupons_total",
		Help: "Coupons offered at checkout by result",
	}, []string{"result"})

	LoyaltyPointsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_loyalty_points_awarded_total",
		Help: "Loyalty points credited on order completion",
	})

	ChatConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_chat_connections",
		Help: "Live chat websocket connections",
	})

	ChatFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_chat_frames_total",
		Help: "Relay frames by type and result",
	}, []string{"type", "result"})

	ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_chat_messages_total",
		Help: "Persisted chat messages by sender role",
	}, []string{"role"})
)

// Order placement outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeRejected   = "rejected"
	OutcomeOutOfStock = "out_of_stock"
	OutcomeError      = "error"
)
