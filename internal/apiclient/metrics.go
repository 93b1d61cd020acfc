package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_gateway_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"service", "method", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_gateway_request_duration_seconds",
			Help:    "Duration of gateway requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	tokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_token_refresh_total",
			Help: "Token refresh attempts triggered by 401 responses",
		},
		[]string{"result"},
	)
)
