package api

import (
	"context"
	"net/http"

	"github.com/moodly/moodly-client/client/internal/types"
)

// CreateMood records a mood for the signed-in user.
func CreateMood(ctx context.Context, d Doer, tr Translator, req types.CreateMoodRequest) (*types.MoodEntry, error) {
	if err := types.ValidateMood(req.Mood); err != nil {
		return nil, err
	}
	if err := types.ValidateNote(req.Note); err != nil {
		return nil, err
	}
	return call[types.MoodEntry](ctx, d, tr, "create mood", http.MethodPost, "/api/moods", req, http.StatusCreated)
}

// LatestMood returns the most recent entry, or nil when the user has none.
func LatestMood(ctx context.Context, d Doer, tr Translator) (*types.MoodEntry, error) {
	out, err := call[struct {
		Entry *types.MoodEntry `json:"entry"`
	}](ctx, d, tr, "latest mood", http.MethodGet, "/api/moods/latest", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return out.Entry, nil
}

// MoodHistory lists the user's entries, newest first.
func MoodHistory(ctx context.Context, d Doer, tr Translator) (*types.MoodHistoryResponse, error) {
	return call[types.MoodHistoryResponse](ctx, d, tr, "mood history", http.MethodGet, "/api/moods/history", nil, http.StatusOK)
}
