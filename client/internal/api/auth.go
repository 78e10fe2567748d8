package api

import (
	"context"
	"net/http"

	"github.com/moodly/moodly-client/client/internal/transport"
	"github.com/moodly/moodly-client/client/internal/types"
)

// Register creates an account and starts a session.
func Register(ctx context.Context, d Doer, tr Translator, req types.RegisterRequest) (*types.User, error) {
	if err := types.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := types.ValidatePassword("password", req.Password); err != nil {
		return nil, err
	}
	if req.Country != "" {
		if err := types.ValidateCountry(req.Country); err != nil {
			return nil, err
		}
	}
	out, err := call[types.AuthResponse](ctx, d, tr, "register", http.MethodPost, "/api/auth/register", req, http.StatusCreated, transport.SkipRefresh())
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login starts a session. A wrong password is reported as INVALID_CREDENTIALS,
// never as an expired session.
func Login(ctx context.Context, d Doer, tr Translator, req types.LoginRequest) (*types.User, error) {
	if err := types.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, types.ValidatePassword("password", req.Password)
	}
	out, err := call[types.AuthResponse](ctx, d, tr, "login", http.MethodPost, "/api/auth/login", req, http.StatusOK, transport.SkipRefresh())
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Refresh rotates the session cookies using the refresh cookie.
func Refresh(ctx context.Context, d Doer, tr Translator) error {
	return callNoBody(ctx, d, tr, "refresh", http.MethodPost, "/api/auth/refresh", nil, transport.SkipRefresh())
}

// Logout ends the session server-side. It goes through the refresh path so an
// expired access cookie does not strand the refresh token, but a failed refresh
// does not emit AuthExpired; the caller has already signed out.
func Logout(ctx context.Context, d Doer, tr Translator) error {
	return callNoBody(ctx, d, tr, "logout", http.MethodPost, "/api/auth/logout", nil, transport.NoExpiryEvent())
}

// LogoutRetry replays a queued logout, telling the server when it was first attempted.
func LogoutRetry(ctx context.Context, d Doer, tr Translator, req types.LogoutRequest) error {
	return callNoBody(ctx, d, tr, "logout", http.MethodPost, "/api/auth/logout", req, transport.NoExpiryEvent())
}
