package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_submissions_total",
			Help: "Checkout submissions by payment method and outcome",
		},
		[]string{"method", "outcome"},
	)

	reservationRollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_reservation_rollbacks_total",
			Help: "Flash sale reservations released after a failed checkout",
		},
		[]string{"result"},
	)

	previewRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_previews_total",
			Help: "Checkout preview requests by result",
		},
		[]string{"result"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_checkout_sessions_active",
			Help: "Open checkout sessions",
		},
	)
)
