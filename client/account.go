package client

import (
	"context"

	"github.com/moodly/moodly-client/client/internal/api"
	"github.com/moodly/moodly-client/client/internal/session"
)

// --------------------------------------------------------------------
// Account operations
// --------------------------------------------------------------------

// UpdateCountry changes the account country (ISO 3166-1 alpha-2, e.g. "ES").
func (c *Client) UpdateCountry(ctx context.Context, code string) (*User, error) {
	u, err := api.UpdateCountry(ctx, c.doer, c.tr, code)
	if err != nil {
		return nil, err
	}
	c.session.Dispatch(session.ChangeCountry(u.Country))
	c.selected.InvalidateAll()
	return u, nil
}

// UpdatePhoto changes the profile photo URL.
func (c *Client) UpdatePhoto(ctx context.Context, photoURL string) (*User, error) {
	u, err := api.UpdatePhoto(ctx, c.doer, c.tr, photoURL)
	if err != nil {
		return nil, err
	}
	c.session.Dispatch(session.ChangePhoto(u.PhotoURL))
	return u, nil
}

// ChangePassword rotates the password. The session stays valid.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return api.ChangePassword(ctx, c.doer, c.tr, req)
}

// DeleteAccount permanently deletes the account and clears all local state.
// OnSessionChange subscribers see a state with Deleted set just before the
// session is cleared; Session() returns nil once DeleteAccount returns.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := api.DeleteAccount(ctx, c.doer, c.tr); err != nil {
		return err
	}
	c.session.Dispatch(session.MarkDeleted())
	c.Reset()
	c.jar.Clear()
	return nil
}
