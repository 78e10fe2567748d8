package client

import (
	"context"

	"github.com/moodly/moodly-client/client/internal/api"
)

// CurrentInsights returns the latest insight report, cached for 48h by default.
func (c *Client) CurrentInsights(ctx context.Context) (*Insights, error) {
	out, err := c.insightsCurrent.Get(ctx, "", func(ctx context.Context) (Insights, error) {
		v, err := api.CurrentInsights(ctx, c.doer, c.tr)
		if err != nil {
			return Insights{}, err
		}
		return *v, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviousInsights returns the report before the current one, cached for 30m by default.
func (c *Client) PreviousInsights(ctx context.Context) (*Insights, error) {
	out, err := c.insightsPrevious.Get(ctx, "", func(ctx context.Context) (Insights, error) {
		v, err := api.PreviousInsights(ctx, c.doer, c.tr)
		if err != nil {
			return Insights{}, err
		}
		return *v, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateInsights returns a valid cached current report when there is one, and
// otherwise asks the backend for a new report. While a generation is running
// (in this process or one that stopped less than GenerationTimeout ago) it fails
// fast with ErrGenerationInProgress, which is not a user-facing error.
func (c *Client) GenerateInsights(ctx context.Context) (*Insights, error) {
	if cached, ok := c.insightsCurrent.Peek(""); ok {
		insightsGenerationTotal.WithLabelValues("cached").Inc()
		return &cached, nil
	}
	if !c.genLock.TryAcquire() {
		insightsGenerationTotal.WithLabelValues("in_progress").Inc()
		return nil, ErrGenerationInProgress
	}
	defer c.genLock.Clear()

	v, err := api.GenerateInsights(ctx, c.doer, c.tr)
	if err != nil {
		insightsGenerationTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	insightsGenerationTotal.WithLabelValues("generated").Inc()
	c.insightsCurrent.Put("", *v)
	c.insightsPrevious.InvalidateAll()
	return v, nil
}
