package logoutqueue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retryTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "moodly_client",
		Name:      "logout_retry_total",
		Help:      "Deferred logout ticks by outcome.",
	},
	[]string{"outcome"},
)
