package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Mood is one of the fixed moods a user can record.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodCalm    Mood = "calm"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodAnxious Mood = "anxious"
	MoodTired   Mood = "tired"
	MoodExcited Mood = "excited"
)

// Moods lists every accepted mood.
var Moods = []Mood{MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAngry, MoodAnxious, MoodTired, MoodExcited}

// Period selects the window a personal statistic is computed over.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// User represents the authenticated account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Country   string    `json:"country,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MoodEntry is a single recorded mood
type MoodEntry struct {
	ID        string    `json:"id"`
	Mood      Mood      `json:"mood"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
