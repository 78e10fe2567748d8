package client

import (
	"context"

	"github.com/moodly/moodly-client/client/internal/api"
)

// CreateMood records a mood. Every mutation-keyed statistic becomes stale.
func (c *Client) CreateMood(ctx context.Context, req CreateMoodRequest) (*MoodEntry, error) {
	e, err := api.CreateMood(ctx, c.doer, c.tr, req)
	if err != nil {
		return nil, err
	}
	c.mutations.Record(c.now())
	return e, nil
}

// LatestMood returns the newest entry, or nil when there is none. Not cached.
func (c *Client) LatestMood(ctx context.Context) (*MoodEntry, error) {
	return api.LatestMood(ctx, c.doer, c.tr)
}

// MoodHistory lists the user's entries, served from cache until the next CreateMood.
func (c *Client) MoodHistory(ctx context.Context) (*MoodHistoryResponse, error) {
	out, err := c.history.Get(ctx, "", func(ctx context.Context) (MoodHistoryResponse, error) {
		h, err := api.MoodHistory(ctx, c.doer, c.tr)
		if err != nil {
			return MoodHistoryResponse{}, err
		}
		return *h, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
