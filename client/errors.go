package client

import (
	"errors"

	apierrors "github.com/moodly/moodly-client/client/internal/errors"
)

// Error types returned by every operation. Messages are already localized and
// safe to show to the user.
type (
	APIError        = apierrors.APIError
	ValidationError = apierrors.ValidationError
	ErrorKind       = apierrors.Kind
)

const (
	KindBackend     = apierrors.KindBackend
	KindNetwork     = apierrors.KindNetwork
	KindAuthExpired = apierrors.KindAuthExpired
)

var (
	// ErrSessionExpired is wrapped by errors for sessions that can no longer be refreshed.
	ErrSessionExpired = apierrors.ErrSessionExpired
	// ErrGenerationInProgress is returned by GenerateInsights while another generation runs.
	ErrGenerationInProgress = apierrors.ErrGenerationInProgress
)

// IsSessionExpired reports whether err means the user must sign in again.
func IsSessionExpired(err error) bool { return errors.Is(err, ErrSessionExpired) }

// IsValidation reports whether err was raised before any network call.
func IsValidation(err error) bool { return apierrors.IsValidation(err) }

// IsUserFacing reports whether err should be shown to the user.
func IsUserFacing(err error) bool { return apierrors.IsUserFacing(err) }
