package client

import (
	"github.com/moodly/moodly-client/client/internal/session"
	"github.com/moodly/moodly-client/client/internal/types"
	"github.com/moodly/moodly-client/internal/localstate"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	RegisterRequest       = types.RegisterRequest
	LoginRequest          = types.LoginRequest
	CreateMoodRequest     = types.CreateMoodRequest
	UpdateCountryRequest  = types.UpdateCountryRequest
	UpdatePhotoRequest    = types.UpdatePhotoRequest
	ChangePasswordRequest = types.ChangePasswordRequest
	LogoutRequest         = types.LogoutRequest

	// Domain entities
	Mood      = types.Mood
	Period    = types.Period
	User      = types.User
	MoodEntry = types.MoodEntry
	UserState = session.UserState

	// Responses
	AuthResponse          = types.AuthResponse
	MoodHistoryResponse   = types.MoodHistoryResponse
	DominantMood          = types.DominantMood
	HappinessIndex        = types.HappinessIndex
	MoodFrequency         = types.MoodFrequency
	ThroughDay            = types.ThroughDay
	ThroughDayBucket      = types.ThroughDayBucket
	GlobalStats           = types.GlobalStats
	Insights              = types.Insights
	SameMoodToday         = types.SameMoodToday
	CountryShare          = types.CountryShare
	SelectedMoodCountries = types.SelectedMoodCountries
	HourCount             = types.HourCount
	SelectedMoodHours     = types.SelectedMoodHours
	TrendPoint            = types.TrendPoint
	SelectedMoodTrend     = types.SelectedMoodTrend
	MoodSelectedStats     = types.MoodSelectedStats

	// Store persists client state between runs.
	Store = localstate.Store
)

const (
	MoodHappy   = types.MoodHappy
	MoodCalm    = types.MoodCalm
	MoodNeutral = types.MoodNeutral
	MoodSad     = types.MoodSad
	MoodAngry   = types.MoodAngry
	MoodAnxious = types.MoodAnxious
	MoodTired   = types.MoodTired
	MoodExcited = types.MoodExcited

	PeriodToday = types.PeriodToday
	PeriodWeek  = types.PeriodWeek
	PeriodMonth = types.PeriodMonth
)

// Moods lists every accepted mood.
var Moods = types.Moods
