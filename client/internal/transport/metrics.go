package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "moodly_client",
		Name:      "http_requests_total",
		Help:      "Backend requests by method and response status.",
	},
	[]string{"method", "code"},
)
