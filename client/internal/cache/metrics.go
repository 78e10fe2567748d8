package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "moodly_client",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by resource and result (hit, miss, stale, corrupt).",
	},
	[]string{"resource", "result"},
)
