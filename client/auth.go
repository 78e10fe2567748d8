package client

import (
	"context"

	"github.com/moodly/moodly-client/client/internal/api"
	"github.com/moodly/moodly-client/client/internal/logoutqueue"
	"github.com/moodly/moodly-client/client/internal/session"
)

// --------------------------------------------------------------------
// Session operations
// --------------------------------------------------------------------

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	u, err := api.Register(ctx, c.doer, c.tr, req)
	if err != nil {
		return nil, err
	}
	c.startSession(*u)
	return u, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	u, err := api.Login(ctx, c.doer, c.tr, req)
	if err != nil {
		return nil, err
	}
	c.startSession(*u)
	return u, nil
}

// startSession drops state left by any earlier user before recording u.
func (c *Client) startSession(u User) {
	c.Reset()
	c.session.Dispatch(session.SetUser(u))
}

// Logout signs out locally right away and tells the backend. If the backend call
// fails it is queued and retried in the background with exponential backoff;
// Logout itself still succeeds. A session the backend no longer accepts is not
// queued, since there is nothing left to end.
func (c *Client) Logout(ctx context.Context) error {
	c.Reset()

	if err := api.Logout(ctx, c.doer, c.tr); err != nil {
		if IsSessionExpired(err) {
			c.log.Info().Msg("server session already ended")
			c.jar.Clear()
			return nil
		}
		c.log.Warn().Err(err).Msg("logout failed; queued for retry")
		if qerr := c.logout.Enqueue(c.now()); qerr != nil {
			c.log.Error().Err(qerr).Msg("failed to persist pending logout")
			return nil
		}
		c.logout.Start(c.bg)
		return nil
	}
	c.jar.Clear()
	return nil
}

// PendingLogout reports whether a failed logout is still waiting to reach the backend.
func (c *Client) PendingLogout() bool {
	_, ok := c.logout.Pending()
	return ok
}

// FlushLogout makes one delivery attempt for a pending logout now, instead of
// waiting for the next scheduled retry. delivered is true when the backend
// accepted it; a record that is too old or was tried too often is dropped
// without a request, and one whose session the backend no longer knows is
// dropped after the attempt.
func (c *Client) FlushLogout(ctx context.Context) (delivered bool, err error) {
	c.logout.Stop()
	outcome, err := c.logout.Tick(ctx)
	switch outcome {
	case logoutqueue.OutcomeRetry:
		c.logout.Start(c.bg)
	case logoutqueue.OutcomeResolved, logoutqueue.OutcomeDropped:
		c.jar.Clear()
	}
	return outcome == logoutqueue.OutcomeResolved, err
}

// Me fetches the signed-in user and refreshes the session state.
func (c *Client) Me(ctx context.Context) (*User, error) {
	u, err := api.Me(ctx, c.doer, c.tr)
	if err != nil {
		return nil, err
	}
	c.session.Dispatch(session.SetUser(*u))
	return u, nil
}
