package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	insightsGenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodly_client",
			Name:      "insights_generation_total",
			Help:      "GenerateInsights calls by outcome (cached, in_progress, generated, failed).",
		},
		[]string{"outcome"},
	)

	selectedStatsFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodly_client",
			Name:      "selected_stats_fallbacks_total",
			Help:      "Mood-selected sub-statistics replaced by a placeholder after a failed fetch.",
		},
		[]string{"part"},
	)
)
