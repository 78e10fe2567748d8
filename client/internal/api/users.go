package api

import (
	"context"
	"net/http"

	"github.com/moodly/moodly-client/client/internal/types"
)

// Me returns the signed-in user.
func Me(ctx context.Context, d Doer, tr Translator) (*types.User, error) {
	out, err := call[types.AuthResponse](ctx, d, tr, "get profile", http.MethodGet, "/api/users/me", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateCountry changes the account country and returns the updated user.
func UpdateCountry(ctx context.Context, d Doer, tr Translator, code string) (*types.User, error) {
	if err := types.ValidateCountry(code); err != nil {
		return nil, err
	}
	out, err := call[types.AuthResponse](ctx, d, tr, "update country", http.MethodPatch, "/api/users/me/country", types.UpdateCountryRequest{Country: code}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdatePhoto changes the profile photo and returns the updated user.
func UpdatePhoto(ctx context.Context, d Doer, tr Translator, photoURL string) (*types.User, error) {
	if err := types.ValidatePhotoURL(photoURL); err != nil {
		return nil, err
	}
	out, err := call[types.AuthResponse](ctx, d, tr, "update photo", http.MethodPatch, "/api/users/me/photo", types.UpdatePhotoRequest{PhotoURL: photoURL}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ChangePassword rotates the password.
func ChangePassword(ctx context.Context, d Doer, tr Translator, req types.ChangePasswordRequest) error {
	if req.CurrentPassword == "" {
		return types.ValidatePassword("currentPassword", req.CurrentPassword)
	}
	if err := types.ValidatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}
	return callNoBody(ctx, d, tr, "change password", http.MethodPost, "/api/users/me/password", req)
}

// DeleteAccount permanently removes the account.
func DeleteAccount(ctx context.Context, d Doer, tr Translator) error {
	return callNoBody(ctx, d, tr, "delete account", http.MethodDelete, "/api/users/me", nil)
}
