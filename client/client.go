package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/moodly/moodly-client/client/internal/api"
	"github.com/moodly/moodly-client/client/internal/authrefresh"
	"github.com/moodly/moodly-client/client/internal/cache"
	"github.com/moodly/moodly-client/client/internal/events"
	"github.com/moodly/moodly-client/client/internal/genlock"
	"github.com/moodly/moodly-client/client/internal/i18n"
	"github.com/moodly/moodly-client/client/internal/logoutqueue"
	"github.com/moodly/moodly-client/client/internal/session"
	"github.com/moodly/moodly-client/client/internal/transport"
	"github.com/moodly/moodly-client/client/internal/types"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is the Moodly SDK. It owns every piece of client-side state (session,
// caches, logout queue, generation lock) for one user of one backend. Create it
// once with New and Close it on shutdown.
type Client struct {
	baseURL  string
	http     *http.Client
	store    localstate.Store
	log      zerolog.Logger
	now      func() time.Time
	locale   string
	settings Settings

	tr        *i18n.Catalog
	bus       *events.Bus
	jar       *transport.PersistentJar
	doer      *transport.Doer
	refresher *authrefresh.Coordinator
	session   *session.Store
	mutations *cache.MutationLog
	logout    *logoutqueue.Queue
	genLock   *genlock.Lock

	dominant         *cache.Resource[types.DominantMood]
	happiness        *cache.Resource[types.HappinessIndex]
	frequency        *cache.Resource[types.MoodFrequency]
	throughDay       *cache.Resource[types.ThroughDay]
	history          *cache.Resource[types.MoodHistoryResponse]
	insightsCurrent  *cache.Resource[types.Insights]
	insightsPrevious *cache.Resource[types.Insights]
	selected         *cache.Resource[types.MoodSelectedStats]

	bg       context.Context
	cancelBG context.CancelFunc

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the backend at baseURL.
//
// Without WithStore the client keeps its state in memory only. When the store
// holds a pending logout from an earlier run, New resumes retrying it in the
// background.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid baseURL %q", baseURL)
	}

	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log.Logger,
		now:      time.Now,
		locale:   "en",
		settings: DefaultSettings(),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.store == nil {
		c.store = localstate.NewMemoryStore()
	}

	if err := c.wire(); err != nil {
		return nil, err
	}

	if c.session.Restore() {
		c.log.Debug().Msg("session restored from shadow copy")
	}
	if _, pending := c.logout.Pending(); pending {
		c.log.Info().Msg("resuming deferred logout")
		c.logout.Start(c.bg)
	}
	return c, nil
}

// wire builds the components on top of the options.
func (c *Client) wire() error {
	jar, err := transport.NewPersistentJar(c.store, c.baseURL, c.log)
	if err != nil {
		return err
	}
	c.jar = jar
	hc := *c.http
	hc.Jar = jar
	c.http = &hc

	c.tr = i18n.New(c.locale)
	c.bus = events.NewBus()
	c.doer = transport.New(c.http, c.baseURL, c.bus, c.log)
	c.doer.SetHeader("X-Device-ID", session.DeviceID(c.store))
	c.refresher = authrefresh.New(func(ctx context.Context) error {
		return api.Refresh(ctx, c.doer, c.tr)
	}, c.log)
	c.doer.SetRefresher(c.refresher)

	c.session = session.NewStore(c.store, c.log)
	c.bus.Subscribe(events.AuthExpired, func(events.Event) {
		c.session.Dispatch(session.Logout())
		c.jar.Clear()
	})

	c.mutations = cache.NewMutationLog(c.store, c.now, c.log)
	mutationKeyed := cache.MutationKeyed(c.mutations)
	res := func(name, key string, v cache.Validity) cache.Config {
		return cache.Config{Name: name, Key: key, Validity: v, Store: c.store, Now: c.now, Logger: c.log}
	}
	c.dominant = cache.New[types.DominantMood](res("dominant_mood", "dominant_mood", mutationKeyed))
	c.happiness = cache.New[types.HappinessIndex](res("happiness_index", "happiness_index", mutationKeyed))
	c.frequency = cache.New[types.MoodFrequency](res("mood_frequency", "mood_frequency", mutationKeyed))
	c.throughDay = cache.New[types.ThroughDay](res("through_day", "through_day", mutationKeyed))
	c.history = cache.New[types.MoodHistoryResponse](res("mood_history", "mood_history", mutationKeyed))
	c.insightsCurrent = cache.New[types.Insights](res("ai_insights_current", "ai_insights_current", cache.TTL(c.settings.InsightsCurrentTTL)))
	c.insightsPrevious = cache.New[types.Insights](res("ai_insights_previous", "ai_insights_previous", cache.TTL(c.settings.InsightsPreviousTTL)))
	c.selected = cache.New[types.MoodSelectedStats](res("mood_selected_stats", "mood_selected_stats_all", cache.TTL(c.settings.SelectedStatsTTL)))

	c.logout = logoutqueue.New(logoutqueue.Config{
		BaseInterval: c.settings.LogoutRetryBase,
		MaxInterval:  c.settings.LogoutRetryMaxInterval,
		MaxAttempts:  c.settings.LogoutRetryMaxAttempts,
		MaxAge:       c.settings.LogoutRetryMaxAge,
	}, c.store, func(ctx context.Context, rec logoutqueue.Record) error {
		err := api.LogoutRetry(ctx, c.doer, c.tr, types.LogoutRequest{Timestamp: rec.Timestamp, Attempts: rec.Attempts})
		if IsSessionExpired(err) {
			return backoff.Permanent(err)
		}
		return err
	}, c.now, c.log)
	c.genLock = genlock.New(c.store, c.settings.GenerationTimeout, c.now, c.log)

	c.bg, c.cancelBG = context.WithCancel(context.Background())
	return nil
}

// Reset clears every cache, the generation lock and the session. Cookies and a
// pending logout are left alone.
func (c *Client) Reset() {
	c.dominant.InvalidateAll()
	c.happiness.InvalidateAll()
	c.frequency.InvalidateAll()
	c.throughDay.InvalidateAll()
	c.history.InvalidateAll()
	c.insightsCurrent.InvalidateAll()
	c.insightsPrevious.InvalidateAll()
	c.selected.InvalidateAll()
	c.mutations.Clear()
	c.genLock.Clear()
	c.session.Dispatch(session.Logout())
}

// Close stops background work and closes the store. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.cancelBG != nil {
		c.cancelBG()
	}
	if c.logout != nil {
		c.logout.Stop()
	}
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// OnSessionExpired registers fn to run when a session can no longer be refreshed.
// By the time fn runs the local session has been cleared.
func (c *Client) OnSessionExpired(fn func()) (unsubscribe func()) {
	return c.bus.Subscribe(events.AuthExpired, func(events.Event) { fn() })
}

// OnSessionChange registers fn to run after every change to the session state.
// fn receives nil when the user is signed out.
func (c *Client) OnSessionChange(fn func(*UserState)) {
	c.session.Subscribe(fn)
}

// Session returns a copy of the current session state, or nil when signed out.
func (c *Client) Session() *UserState {
	return c.session.State()
}

// Locale reports the language error messages are rendered in.
func (c *Client) Locale() string { return c.tr.Tag().String() }
