package client

import (
	"context"

	"github.com/moodly/moodly-client/client/internal/api"
	"github.com/moodly/moodly-client/client/internal/cache"
	"github.com/moodly/moodly-client/client/internal/types"
	"golang.org/x/sync/errgroup"
)

// --------------------------------------------------------------------
// Personal statistics - cached until the next CreateMood
// --------------------------------------------------------------------

// periodStat validates p before consulting the cache so bad input never reaches
// the store or the network.
func periodStat[T any](ctx context.Context, c *Client, r *cache.Resource[T], p Period,
	fetch func(context.Context, api.Doer, api.Translator, types.Period) (*T, error)) (*T, error) {
	if err := types.ValidatePeriod(p); err != nil {
		return nil, err
	}
	out, err := r.Get(ctx, string(p), func(ctx context.Context) (T, error) {
		v, err := fetch(ctx, c.doer, c.tr, p)
		if err != nil {
			var zero T
			return zero, err
		}
		return *v, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DominantMood returns the most frequent mood in p.
func (c *Client) DominantMood(ctx context.Context, p Period) (*DominantMood, error) {
	return periodStat(ctx, c, c.dominant, p, api.DominantMood)
}

// HappinessIndex returns the happiness score for p.
func (c *Client) HappinessIndex(ctx context.Context, p Period) (*HappinessIndex, error) {
	return periodStat(ctx, c, c.happiness, p, api.HappinessIndex)
}

// MoodFrequency returns per-mood counts for p.
func (c *Client) MoodFrequency(ctx context.Context, p Period) (*MoodFrequency, error) {
	return periodStat(ctx, c, c.frequency, p, api.MoodFrequency)
}

// ThroughDay returns how mood moves across the day in p.
func (c *Client) ThroughDay(ctx context.Context, p Period) (*ThroughDay, error) {
	return periodStat(ctx, c, c.throughDay, p, api.ThroughDay)
}

// GlobalStats returns statistics across all users. Not cached.
func (c *Client) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	return api.GlobalStats(ctx, c.doer, c.tr)
}

// --------------------------------------------------------------------
// Mood-selected statistics
// --------------------------------------------------------------------

// MoodSelectedStats fetches the four statistics for mood concurrently. A part that
// fails is replaced by a placeholder with HasData false and a localized Message;
// the call itself only fails on invalid input or a cancelled ctx. Complete results
// are cached for the selected-stats TTL.
func (c *Client) MoodSelectedStats(ctx context.Context, mood Mood) (*MoodSelectedStats, error) {
	if err := types.ValidateMood(mood); err != nil {
		return nil, err
	}
	if cached, ok := c.selected.Peek(string(mood)); ok {
		return &cached, nil
	}

	out := MoodSelectedStats{Mood: mood}
	var g errgroup.Group
	g.Go(func() error {
		v, err := api.SameMoodToday(ctx, c.doer, c.tr, mood)
		if err != nil {
			c.fallback("same_today", err)
			out.SameToday = SameMoodToday{Message: c.tr.Message("STATS_SAME_TODAY_DOWN")}
			return nil
		}
		out.SameToday = *v
		return nil
	})
	g.Go(func() error {
		v, err := api.SelectedMoodCountries(ctx, c.doer, c.tr, mood)
		if err != nil {
			c.fallback("countries", err)
			out.Countries = SelectedMoodCountries{Message: c.tr.Message("STATS_COUNTRIES_DOWN"), Countries: []CountryShare{}}
			return nil
		}
		out.Countries = *v
		return nil
	})
	g.Go(func() error {
		v, err := api.SelectedMoodHours(ctx, c.doer, c.tr, mood)
		if err != nil {
			c.fallback("hours", err)
			out.Hours = SelectedMoodHours{Message: c.tr.Message("STATS_HOURS_DOWN"), Hours: []HourCount{}}
			return nil
		}
		out.Hours = *v
		return nil
	})
	g.Go(func() error {
		v, err := api.SelectedMoodTrend(ctx, c.doer, c.tr, mood)
		if err != nil {
			c.fallback("trend", err)
			out.Trend = SelectedMoodTrend{Message: c.tr.Message("STATS_TREND_DOWN"), Points: []TrendPoint{}}
			return nil
		}
		out.Trend = *v
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if out.Complete() {
		c.selected.Put(string(mood), out)
	}
	return &out, nil
}

func (c *Client) fallback(part string, err error) {
	selectedStatsFallbacksTotal.WithLabelValues(part).Inc()
	c.log.Warn().Err(err).Str("part", part).Msg("selected mood statistic unavailable; using placeholder")
}
