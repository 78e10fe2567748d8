package client_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/moodly/moodly-client/client"
	"github.com/moodly/moodly-client/internal/fakebackend"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	srv   *fakebackend.Server
	store *localstate.MemoryStore
	clk   *clock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := fakebackend.Start()
	t.Cleanup(srv.Close)
	return &env{
		srv:   srv,
		store: localstate.NewMemoryStore(),
		clk:   &clock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)},
	}
}

func (e *env) client(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()
	base := []client.Option{
		client.WithStore(e.store),
		client.WithClock(e.clk.Now),
		client.WithLogger(zerolog.Nop()),
		client.WithSettings(client.Settings{LogoutRetryBase: time.Hour, LogoutRetryMaxInterval: time.Hour}),
	}
	c, err := client.New(e.srv.URL(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func register(t *testing.T, c *client.Client) *client.User {
	t.Helper()
	u, err := c.Register(context.Background(), client.RegisterRequest{Email: "ana@example.com", Password: "password1", Name: "Ana", Country: "ES"})
	require.NoError(t, err)
	return u
}

func TestRegisterSetsSession(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	u := register(t, c)

	st := c.Session()
	require.NotNil(t, st)
	assert.Equal(t, u.ID, st.ID)
	assert.Equal(t, "ES", st.Country)
}

func TestMutationKeyedStats(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	_, err := c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.MoodHappy})
	require.NoError(t, err)

	first, err := c.DominantMood(ctx, client.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, client.MoodHappy, first.Mood)

	_, err = c.DominantMood(ctx, client.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteDominant), "second read is served from cache")

	e.clk.Advance(time.Second)
	_, err = c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.MoodSad})
	require.NoError(t, err)
	_, err = c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.MoodSad})
	require.NoError(t, err)

	after, err := c.DominantMood(ctx, client.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, e.srv.Calls(fakebackend.RouteDominant), "new mood invalidates the entry")
	assert.Equal(t, client.MoodSad, after.Mood)

	_, err = c.DominantMood(ctx, client.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 3, e.srv.Calls(fakebackend.RouteDominant), "periods are cached separately")
}

func TestCorruptCacheEntryIsAMiss(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	require.NoError(t, e.store.Set("mood_history", "{not json"))
	h, err := c.MoodHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Count)
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteHistory))

	raw, ok, _ := e.store.Get("mood_history")
	require.True(t, ok)
	assert.Contains(t, raw, `"timestamp"`)
}

func TestInsightsTTL(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	_, err := c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.MoodCalm})
	require.NoError(t, err)
	gen, err := c.GenerateInsights(ctx)
	require.NoError(t, err)

	cur, err := c.CurrentInsights(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen.ID, cur.ID)
	assert.Equal(t, 0, e.srv.Calls(fakebackend.RouteInsightsCurrent), "generation seeds the cache")

	e.clk.Advance(48*time.Hour - time.Millisecond)
	_, err = c.CurrentInsights(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, e.srv.Calls(fakebackend.RouteInsightsCurrent))

	e.clk.Advance(time.Millisecond)
	_, err = c.CurrentInsights(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteInsightsCurrent), "expired at exactly the TTL")
}

func TestGenerateInsights_ServesCacheThenLocks(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()
	_, err := c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.MoodCalm})
	require.NoError(t, err)

	e.srv.SetGenerateDelay(300 * time.Millisecond)
	done := make(chan error, 1)
	go func() {
		_, err := c.GenerateInsights(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return e.srv.Calls(fakebackend.RouteInsightsGenerate) == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = c.GenerateInsights(ctx)
	require.ErrorIs(t, err, client.ErrGenerationInProgress)
	assert.False(t, client.IsUserFacing(err))
	require.NoError(t, <-done)

	_, err = c.GenerateInsights(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteInsightsGenerate), "valid cached report wins over generating")
}

func TestConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	e.srv.ExpireAccess()
	e.srv.SetRefreshDelay(200 * time.Millisecond)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.LatestMood(ctx)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteRefresh))
	assert.Equal(t, 2*n, e.srv.Calls(fakebackend.RouteLatestMood), "each request replayed exactly once")
}

func TestRefreshRejectedExpiresSession(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)

	var expired int
	c.OnSessionExpired(func() { expired++ })

	e.srv.ExpireAccess()
	e.srv.RevokeRefresh("REFRESH_TOKEN_REVOKED")

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsSessionExpired(err))
	assert.Equal(t, 1, expired)
	assert.Nil(t, c.Session())
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteMe), "no replay after a failed refresh")
}

func TestCallerDeadlineDuringRefreshKeepsSession(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)

	var expired int
	c.OnSessionExpired(func() { expired++ })

	e.srv.ExpireAccess()
	e.srv.SetRefreshDelay(300 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.LatestMood(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, client.IsSessionExpired(err))
	assert.Equal(t, 0, expired)
	require.NotNil(t, c.Session(), "a caller giving up is not a rejected refresh")

	_, err = c.LatestMood(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	assert.Equal(t, 1, e.srv.Calls(fakebackend.RouteRefresh))
}

func TestLoginWrongPasswordIsLocalized(t *testing.T) {
	e := newEnv(t)
	register(t, e.client(t))

	c := e.client(t, client.WithLocale("es"))
	_, err := c.Login(context.Background(), client.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Correo o contraseña incorrectos.", apiErr.Error())
	assert.False(t, client.IsSessionExpired(err))
	assert.Equal(t, 0, e.srv.Calls(fakebackend.RouteRefresh))
}

func TestValidationRejectedBeforeNetwork(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	_, err := c.CreateMood(ctx, client.CreateMoodRequest{Mood: "meh"})
	assert.True(t, client.IsValidation(err))
	_, err = c.DominantMood(ctx, "year")
	assert.True(t, client.IsValidation(err))
	_, err = c.MoodSelectedStats(ctx, "meh")
	assert.True(t, client.IsValidation(err))

	assert.Zero(t, e.srv.Calls(fakebackend.RouteCreateMood))
	assert.Zero(t, e.srv.Calls(fakebackend.RouteDominant))
	assert.Zero(t, e.srv.Calls(fakebackend.RouteSameToday))
}

func TestMoodSelectedStats_PartialFailure(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()
	_, err := c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.MoodTired})
	require.NoError(t, err)

	e.srv.Fail(fakebackend.RouteHours, http.StatusInternalServerError, "INTERNAL_ERROR")
	got, err := c.MoodSelectedStats(ctx, client.MoodTired)
	require.NoError(t, err)
	assert.True(t, got.SameToday.HasData)
	assert.True(t, got.Countries.HasData)
	assert.True(t, got.Trend.HasData)
	assert.False(t, got.Hours.HasData)
	assert.Equal(t, "Unable to load time-of-day breakdown.", got.Hours.Message)
	assert.False(t, got.Complete())

	e.srv.Recover(fakebackend.RouteHours)
	got, err = c.MoodSelectedStats(ctx, client.MoodTired)
	require.NoError(t, err)
	assert.True(t, got.Complete())
	assert.Equal(t, 2, e.srv.Calls(fakebackend.RouteSameToday), "degraded result is not cached")

	_, err = c.MoodSelectedStats(ctx, client.MoodTired)
	require.NoError(t, err)
	assert.Equal(t, 2, e.srv.Calls(fakebackend.RouteSameToday), "complete result is cached")

	e.clk.Advance(5 * time.Minute)
	_, err = c.MoodSelectedStats(ctx, client.MoodTired)
	require.NoError(t, err)
	assert.Equal(t, 3, e.srv.Calls(fakebackend.RouteSameToday))
}

func TestMoodSelectedStats_AllFailStillResolves(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	for _, r := range []string{fakebackend.RouteSameToday, fakebackend.RouteCountries, fakebackend.RouteHours, fakebackend.RouteTrend} {
		e.srv.FailRaw(r, http.StatusBadGateway, "<html>bad gateway</html>")
	}
	got, err := c.MoodSelectedStats(context.Background(), client.MoodHappy)
	require.NoError(t, err)
	assert.NotEmpty(t, got.SameToday.Message)
	assert.NotEmpty(t, got.Countries.Message)
	assert.NotEmpty(t, got.Hours.Message)
	assert.NotEmpty(t, got.Trend.Message)
}

func TestLogoutFailureIsQueued(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	e.srv.Fail(fakebackend.RouteLogout, http.StatusServiceUnavailable, "INTERNAL_ERROR")
	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.Session(), "local sign-out does not wait for the backend")
	assert.True(t, c.PendingLogout())

	e.srv.Recover(fakebackend.RouteLogout)
	delivered, err := c.FlushLogout(ctx)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.False(t, c.PendingLogout())
	assert.JSONEq(t, `{"timestamp":`+itoa(e.clk.Now().UnixMilli())+`,"attempts":1}`, string(e.srv.LastLogoutBody()))
	assert.Equal(t, 0, e.srv.ActiveSessions())
}

func TestLogoutWithDeadSessionIsNotQueued(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)

	var expired int
	c.OnSessionExpired(func() { expired++ })

	e.srv.ExpireAccess()
	e.srv.RevokeRefresh("REFRESH_TOKEN_REVOKED")

	require.NoError(t, c.Logout(context.Background()))
	assert.Nil(t, c.Session())
	assert.False(t, c.PendingLogout(), "nothing left to end on the server")
	assert.LessOrEqual(t, expired, 1)
}

func TestQueuedLogoutDroppedOnceSessionDies(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	var expired int
	c.OnSessionExpired(func() { expired++ })

	e.srv.Fail(fakebackend.RouteLogout, http.StatusServiceUnavailable, "INTERNAL_ERROR")
	require.NoError(t, c.Logout(ctx))
	require.True(t, c.PendingLogout())

	e.srv.Recover(fakebackend.RouteLogout)
	e.srv.ExpireAccess()
	e.srv.RevokeRefresh("REFRESH_TOKEN_REVOKED")

	delivered, err := c.FlushLogout(ctx)
	require.NoError(t, err)
	assert.False(t, delivered)
	assert.False(t, c.PendingLogout())
	assert.Equal(t, 0, expired, "a background logout never signals expiry")
}

func TestPendingLogoutResumesOnStartup(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)

	e.srv.Fail(fakebackend.RouteLogout, http.StatusServiceUnavailable, "INTERNAL_ERROR")
	require.NoError(t, c.Logout(context.Background()))
	require.NoError(t, c.Close())
	e.srv.Recover(fakebackend.RouteLogout)

	next := e.client(t, client.WithSettings(client.Settings{LogoutRetryBase: 10 * time.Millisecond, LogoutRetryMaxInterval: 10 * time.Millisecond}))
	require.Eventually(t, func() bool { return !next.PendingLogout() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, e.srv.ActiveSessions())
}

func TestSessionSurvivesRestart(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	u := register(t, c)
	require.NoError(t, c.Close())

	next := e.client(t)
	st := next.Session()
	require.NotNil(t, st)
	assert.True(t, st.Partial)
	assert.Equal(t, "Ana", st.Name)

	me, err := next.Me(context.Background())
	require.NoError(t, err, "cookies are restored from the store")
	assert.Equal(t, u.ID, me.ID)
	assert.False(t, next.Session().Partial)
}

func TestAccountUpdates(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	register(t, c)
	ctx := context.Background()

	var seen []*client.UserState
	c.OnSessionChange(func(s *client.UserState) { seen = append(seen, s) })

	_, err := c.UpdateCountry(ctx, "PT")
	require.NoError(t, err)
	_, err = c.UpdatePhoto(ctx, "https://cdn.example.com/ana.png")
	require.NoError(t, err)
	require.NoError(t, c.ChangePassword(ctx, client.ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "password2"}))

	st := c.Session()
	assert.Equal(t, "PT", st.Country)
	assert.Equal(t, "https://cdn.example.com/ana.png", st.PhotoURL)

	require.NoError(t, c.DeleteAccount(ctx))
	assert.Nil(t, c.Session())
	require.GreaterOrEqual(t, len(seen), 4)
	assert.True(t, seen[len(seen)-2].Deleted)
	assert.Nil(t, seen[len(seen)-1])
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
