package authrefresh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodly_client",
			Name:      "auth_refresh_total",
			Help:      "Refresh calls sent to the backend, by outcome.",
		},
		[]string{"outcome"},
	)

	sharedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "moodly_client",
			Name:      "auth_refresh_shared_total",
			Help:      "Refresh waits that joined an in-flight refresh.",
		},
	)
)
