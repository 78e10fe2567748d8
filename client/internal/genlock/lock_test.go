package genlock

import (
	"testing"
	"time"

	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestLock_SetAndClear(t *testing.T) {
	l := New(localstate.NewMemoryStore(), 0, nil, zerolog.Nop())
	assert.False(t, l.InProgress())
	l.Set()
	assert.True(t, l.InProgress())
	l.Clear()
	assert.False(t, l.InProgress())
}

func TestLock_ExpiresOnRead(t *testing.T) {
	store := localstate.NewMemoryStore()
	clk := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New(store, 90*time.Second, clk.Now, zerolog.Nop())
	l.Set()

	clk.t = clk.t.Add(90 * time.Second)
	assert.True(t, l.InProgress(), "exactly 90s is still in progress")

	clk.t = clk.t.Add(time.Millisecond)
	assert.False(t, l.InProgress())
	_, ok, _ := store.Get(statusKey)
	assert.False(t, ok, "expired flag must be cleared without an explicit Clear")
}

func TestLock_SurvivesRestart(t *testing.T) {
	store := localstate.NewMemoryStore()
	New(store, 0, nil, zerolog.Nop()).Set()
	assert.True(t, New(store, 0, nil, zerolog.Nop()).InProgress())
}

func TestLock_TryAcquire(t *testing.T) {
	l := New(localstate.NewMemoryStore(), 0, nil, zerolog.Nop())
	require.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire())
	l.Clear()
	assert.True(t, l.TryAcquire())
}

func TestLock_CorruptRecordIsCleared(t *testing.T) {
	store := localstate.NewMemoryStore()
	require.NoError(t, store.Set(statusKey, "{not json"))
	l := New(store, 0, nil, zerolog.Nop())
	assert.False(t, l.InProgress())
	_, ok, _ := store.Get(statusKey)
	assert.False(t, ok)
}
