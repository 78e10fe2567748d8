package types

import "time"

// ------------------------------
// Response Types
// ------------------------------

// AuthResponse is returned by login, register and /users/me
type AuthResponse struct {
	User User `json:"user"`
}

// MoodHistoryResponse lists the user's recorded moods, newest first
type MoodHistoryResponse struct {
	Entries []MoodEntry `json:"entries"`
	Count   int         `json:"count"`
}

// DominantMood is the most frequent mood over a period
type DominantMood struct {
	Period     Period  `json:"period"`
	HasData    bool    `json:"hasData"`
	Mood       Mood    `json:"mood,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HappinessIndex is a 0-100 score over a period with its change vs the previous period
type HappinessIndex struct {
	Period  Period  `json:"period"`
	HasData bool    `json:"hasData"`
	Index   float64 `json:"index"`
	Change  float64 `json:"change"`
}

// MoodFrequency counts each mood over a period
type MoodFrequency struct {
	Period  Period       `json:"period"`
	HasData bool         `json:"hasData"`
	Counts  map[Mood]int `json:"counts"`
	Total   int          `json:"total"`
}

// ThroughDayBucket is the dominant mood within one hour of the day
type ThroughDayBucket struct {
	Hour  int  `json:"hour"`
	Mood  Mood `json:"mood"`
	Count int  `json:"count"`
}

// ThroughDay shows how mood moves across the day
type ThroughDay struct {
	Period  Period             `json:"period"`
	HasData bool               `json:"hasData"`
	Buckets []ThroughDayBucket `json:"buckets"`
}

// GlobalStats aggregates all users
type GlobalStats struct {
	TotalUsers   int              `json:"totalUsers"`
	TotalMoods   int              `json:"totalMoods"`
	DominantMood Mood             `json:"dominantMood,omitempty"`
	Distribution map[Mood]float64 `json:"distribution"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Insights is an AI-generated report over the user's recent moods
type Insights struct {
	ID              string     `json:"id"`
	Summary         string     `json:"summary"`
	Highlights      []string   `json:"highlights,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`
	GeneratedAt     time.Time  `json:"generatedAt"`
	NextAvailableAt *time.Time `json:"nextAvailableAt,omitempty"`
}

// ------------------------------
// Mood-selected statistics
// ------------------------------

// Each part carries HasData/Message so a failed sub-fetch can be replaced by a
// placeholder of the same type.

// SameMoodToday is the share of users who recorded the selected mood today
type SameMoodToday struct {
	HasData    bool    `json:"hasData"`
	Message    string  `json:"message,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CountryShare is one country's share of the selected mood
type CountryShare struct {
	Country    string  `json:"country"`
	Percentage float64 `json:"percentage"`
}

// SelectedMoodCountries ranks countries for the selected mood
type SelectedMoodCountries struct {
	HasData   bool           `json:"hasData"`
	Message   string         `json:"message,omitempty"`
	Countries []CountryShare `json:"countries"`
}

// HourCount is the number of selections of the mood within one hour
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// SelectedMoodHours is the time-of-day distribution of the selected mood
type SelectedMoodHours struct {
	HasData bool        `json:"hasData"`
	Message string      `json:"message,omitempty"`
	Hours   []HourCount `json:"hours"`
}

// TrendPoint is one day's count
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SelectedMoodTrend is the recent daily trend of the selected mood
type SelectedMoodTrend struct {
	HasData bool         `json:"hasData"`
	Message string       `json:"message,omitempty"`
	Points  []TrendPoint `json:"points"`
}

// MoodSelectedStats combines the four selected-mood statistics
type MoodSelectedStats struct {
	Mood      Mood                  `json:"mood"`
	SameToday SameMoodToday         `json:"sameToday"`
	Countries SelectedMoodCountries `json:"countries"`
	Hours     SelectedMoodHours     `json:"hours"`
	Trend     SelectedMoodTrend     `json:"trend"`
}

// Complete reports whether every part came back from the backend.
func (s MoodSelectedStats) Complete() bool {
	return s.SameToday.Message == "" && s.Countries.Message == "" && s.Hours.Message == "" && s.Trend.Message == ""
}
