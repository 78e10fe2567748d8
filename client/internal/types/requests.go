package types

// ------------------------------
// Request Types
// ------------------------------

// RegisterRequest holds parameters for a new account
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Country  string `json:"country,omitempty"`
}

// LoginRequest holds credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateMoodRequest records a mood
type CreateMoodRequest struct {
	Mood Mood   `json:"mood"`
	Note string `json:"note,omitempty"`
}

// UpdateCountryRequest changes the account country (ISO 3166-1 alpha-2)
type UpdateCountryRequest struct {
	Country string `json:"country"`
}

// UpdatePhotoRequest changes the profile photo
type UpdatePhotoRequest struct {
	PhotoURL string `json:"photoUrl"`
}

// ChangePasswordRequest rotates the account password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// LogoutRequest is the body of a deferred logout retry. It carries the time of the
// original logout and the attempt number so the server can tell retries apart.
type LogoutRequest struct {
	Timestamp int64 `json:"timestamp"`
	Attempts  int   `json:"attempts"`
}
