package api

import (
	"context"
	"net/http"

	"github.com/moodly/moodly-client/client/internal/types"
)

// CurrentInsights returns the latest insight report.
func CurrentInsights(ctx context.Context, d Doer, tr Translator) (*types.Insights, error) {
	return call[types.Insights](ctx, d, tr, "current insights", http.MethodGet, "/api/insights/current", nil, http.StatusOK)
}

// PreviousInsights returns the report before the current one.
func PreviousInsights(ctx context.Context, d Doer, tr Translator) (*types.Insights, error) {
	return call[types.Insights](ctx, d, tr, "previous insights", http.MethodGet, "/api/insights/previous", nil, http.StatusOK)
}

// GenerateInsights asks the backend to produce a new report. It can take tens of seconds.
func GenerateInsights(ctx context.Context, d Doer, tr Translator) (*types.Insights, error) {
	return call[types.Insights](ctx, d, tr, "generate insights", http.MethodPost, "/api/insights/generate", nil, http.StatusCreated)
}
