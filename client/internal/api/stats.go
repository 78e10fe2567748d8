package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/moodly/moodly-client/client/internal/transport"
	"github.com/moodly/moodly-client/client/internal/types"
)

func periodStat[T any](ctx context.Context, d Doer, tr Translator, op, path string, p types.Period) (*T, error) {
	if err := types.ValidatePeriod(p); err != nil {
		return nil, err
	}
	q := url.Values{"period": {string(p)}}
	return call[T](ctx, d, tr, op, http.MethodGet, path, nil, http.StatusOK, transport.WithQuery(q))
}

func selectedStat[T any](ctx context.Context, d Doer, tr Translator, op, path string, m types.Mood) (*T, error) {
	if err := types.ValidateMood(m); err != nil {
		return nil, err
	}
	q := url.Values{"mood": {string(m)}}
	return call[T](ctx, d, tr, op, http.MethodGet, path, nil, http.StatusOK, transport.WithQuery(q))
}

// DominantMood returns the most frequent mood in p.
func DominantMood(ctx context.Context, d Doer, tr Translator, p types.Period) (*types.DominantMood, error) {
	return periodStat[types.DominantMood](ctx, d, tr, "dominant mood", "/api/stats/dominant", p)
}

// HappinessIndex returns the happiness score for p.
func HappinessIndex(ctx context.Context, d Doer, tr Translator, p types.Period) (*types.HappinessIndex, error) {
	return periodStat[types.HappinessIndex](ctx, d, tr, "happiness index", "/api/stats/happiness", p)
}

// MoodFrequency returns per-mood counts for p.
func MoodFrequency(ctx context.Context, d Doer, tr Translator, p types.Period) (*types.MoodFrequency, error) {
	return periodStat[types.MoodFrequency](ctx, d, tr, "mood frequency", "/api/stats/frequency", p)
}

// ThroughDay returns the hourly mood curve for p.
func ThroughDay(ctx context.Context, d Doer, tr Translator, p types.Period) (*types.ThroughDay, error) {
	return periodStat[types.ThroughDay](ctx, d, tr, "mood through day", "/api/stats/through-day", p)
}

// GlobalStats returns statistics across all users.
func GlobalStats(ctx context.Context, d Doer, tr Translator) (*types.GlobalStats, error) {
	return call[types.GlobalStats](ctx, d, tr, "global stats", http.MethodGet, "/api/stats/global", nil, http.StatusOK)
}

// SameMoodToday returns how many users picked m today.
func SameMoodToday(ctx context.Context, d Doer, tr Translator, m types.Mood) (*types.SameMoodToday, error) {
	return selectedStat[types.SameMoodToday](ctx, d, tr, "same mood today", "/api/stats/selected/same-today", m)
}

// SelectedMoodCountries ranks countries for m.
func SelectedMoodCountries(ctx context.Context, d Doer, tr Translator, m types.Mood) (*types.SelectedMoodCountries, error) {
	return selectedStat[types.SelectedMoodCountries](ctx, d, tr, "selected mood countries", "/api/stats/selected/countries", m)
}

// SelectedMoodHours returns the time-of-day distribution of m.
func SelectedMoodHours(ctx context.Context, d Doer, tr Translator, m types.Mood) (*types.SelectedMoodHours, error) {
	return selectedStat[types.SelectedMoodHours](ctx, d, tr, "selected mood hours", "/api/stats/selected/hours", m)
}

// SelectedMoodTrend returns the daily trend of m.
func SelectedMoodTrend(ctx context.Context, d Doer, tr Translator, m types.Mood) (*types.SelectedMoodTrend, error) {
	return selectedStat[types.SelectedMoodTrend](ctx, d, tr, "selected mood trend", "/api/stats/selected/trend", m)
}
