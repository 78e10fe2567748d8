// Package errors defines the SDK's error taxonomy: validation failures caught before
// any network call, structured backend errors, network/parse failures and terminal
// authentication failures. Every error's Error() text is ready to show to a user.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure that came back from (or on the way to) the backend.
type Kind int

const (
	// KindBackend is a structured error body carrying a machine code.
	KindBackend Kind = iota

	// KindNetwork covers non-JSON error bodies and undecodable success bodies.
	KindNetwork

	// KindAuthExpired means the session could not be refreshed; the user must log in again.
	KindAuthExpired
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBackend:
		return "Backend"
	case KindNetwork:
		return "Network"
	case KindAuthExpired:
		return "AuthExpired"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Terminal refresh-token codes returned by POST /api/auth/refresh.
const (
	CodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	CodeRefreshTokenRevoked = "REFRESH_TOKEN_REVOKED"
	CodeRefreshTokenInvalid = "REFRESH_TOKEN_INVALID"
)

var (
	// ErrSessionExpired is wrapped by every KindAuthExpired error.
	ErrSessionExpired = errors.New("session expired")

	// ErrGenerationInProgress is returned when an insight report is already being
	// generated. It is a flow-control signal, not a user-facing failure.
	ErrGenerationInProgress = errors.New("insight generation already in progress")
)

// APIError is a failed backend interaction with a localized message.
type APIError struct {
	Kind       Kind
	Op         string // e.g. "create mood"
	StatusCode int    // 0 when no response was received
	Code       string // backend machine code, empty for KindNetwork
	Message    string // localized, user-displayable
	Underlying error
}

// Error implements the error interface and returns the user-facing message.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed: HTTP %d", e.Op, e.StatusCode)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *APIError) Unwrap() error {
	return e.Underlying
}

// ValidationError is raised before any network call; Message is shown verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation is a small constructor used by the types package validators.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsTerminalAuthCode reports whether a refresh failure code means the refresh token is dead.
func IsTerminalAuthCode(code string) bool {
	switch code {
	case CodeRefreshTokenExpired, CodeRefreshTokenRevoked, CodeRefreshTokenInvalid:
		return true
	}
	return false
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUserFacing reports whether err should be surfaced as an error notification.
func IsUserFacing(err error) bool {
	return err != nil && !errors.Is(err, ErrGenerationInProgress)
}
