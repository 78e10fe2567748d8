package types

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	apierrors "github.com/moodly/moodly-client/client/internal/errors"
)

// MaxNoteLength bounds the free-text note attached to a mood.
const MaxNoteLength = 500

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 8

// ValidateEmail checks the address parses and has no display name.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if email == "" || err != nil || addr.Address != email {
		return apierrors.NewValidation("email", "Enter a valid email address.")
	}
	return nil
}

// ValidatePassword enforces the minimum length.
func ValidatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apierrors.NewValidation(field, "Password must be at least 8 characters.")
	}
	return nil
}

// ValidateMood checks m is one of Moods.
func ValidateMood(m Mood) error {
	for _, known := range Moods {
		if m == known {
			return nil
		}
	}
	return apierrors.NewValidation("mood", "Choose one of the available moods.")
}

// ValidateNote bounds the note length.
func ValidateNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return apierrors.NewValidation("note", "Notes can be at most 500 characters.")
	}
	return nil
}

// ValidatePeriod accepts today, week and month.
func ValidatePeriod(p Period) error {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return nil
	}
	return apierrors.NewValidation("period", "Period must be today, week or month.")
}

// ValidateCountry accepts an upper-case ISO 3166-1 alpha-2 code.
func ValidateCountry(code string) error {
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return apierrors.NewValidation("country", "Use a two-letter country code such as GB.")
	}
	return nil
}

// ValidatePhotoURL requires an absolute http(s) URL.
func ValidatePhotoURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apierrors.NewValidation("photoUrl", "Photo must be an http or https link.")
	}
	return nil
}
