// Package authrefresh collapses concurrent session refreshes into one network call.
package authrefresh

import (
	"context"
	"errors"

	apierrors "github.com/moodly/moodly-client/client/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const flightKey = "refresh"

// RefreshFunc performs the refresh call; nil means the session was renewed.
type RefreshFunc func(ctx context.Context) error

// Coordinator is a single-flight wrapper around RefreshFunc. While a refresh is
// outstanding every caller waits on it and receives its result; once it settles
// the next call starts a new one. The refresh itself is never retried.
type Coordinator struct {
	sf  singleflight.Group
	fn  RefreshFunc
	log zerolog.Logger
}

// New returns a Coordinator around fn.
func New(fn RefreshFunc, log zerolog.Logger) *Coordinator {
	return &Coordinator{fn: fn, log: log}
}

// Refresh reports whether the session is usable again. A caller whose ctx ends
// before the shared refresh settles gets ctx.Err() and no verdict; the refresh
// keeps running for the others.
func (c *Coordinator) Refresh(ctx context.Context) (bool, error) {
	ch := c.sf.DoChan(flightKey, func() (any, error) {
		err := c.fn(context.WithoutCancel(ctx))
		if err != nil {
			refreshTotal.WithLabelValues("failure").Inc()
			var ae *apierrors.APIError
			if errors.As(err, &ae) && apierrors.IsTerminalAuthCode(ae.Code) {
				c.log.Info().Str("code", ae.Code).Msg("refresh token rejected; re-login required")
			} else {
				c.log.Warn().Err(err).Msg("session refresh failed")
			}
			return false, err
		}
		refreshTotal.WithLabelValues("success").Inc()
		return true, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			sharedTotal.Inc()
		}
		return res.Err == nil, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
