// Package cache implements the persisted response caches behind the resource
// operations. One generic Resource serves every cached endpoint; what varies is the
// key scheme and the Validity predicate (wall-clock TTL, or "fresh until the user
// records a new mood").
package cache

import (
	"encoding/json"
	"time"

	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

// Entry is the stored envelope. Timestamp and TTL are unix milliseconds.
type Entry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
	TTL       int64 `json:"ttl,omitempty"`
}

// Validity decides whether an entry written at storedMs is still usable at nowMs.
type Validity interface {
	Valid(storedMs, nowMs int64) bool
}

// TTLValidity expires entries a fixed duration after they were written.
type TTLValidity struct{ TTL time.Duration }

// TTL returns a wall-clock Validity.
func TTL(d time.Duration) TTLValidity { return TTLValidity{TTL: d} }

// Valid is true iff now - stored < ttl.
func (v TTLValidity) Valid(storedMs, nowMs int64) bool {
	return nowMs-storedMs < v.TTL.Milliseconds()
}

// MutationValidity keeps entries until a newer mutation is recorded.
type MutationValidity struct{ log *MutationLog }

// MutationKeyed returns a Validity tied to the latest recorded mutation.
func MutationKeyed(log *MutationLog) MutationValidity { return MutationValidity{log: log} }

// Valid is true iff stored >= latest mutation. With no recorded mutation every
// entry is valid.
func (v MutationValidity) Valid(storedMs, _ int64) bool {
	latest, ok := v.log.Latest()
	if !ok {
		return true
	}
	return storedMs >= latest
}

const latestMoodKey = "latest_mood"

type latestMood struct {
	Timestamp int64 `json:"timestamp"`
}

// MutationLog persists the time of the user's most recent mood.
type MutationLog struct {
	store localstate.Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewMutationLog returns a MutationLog over store.
func NewMutationLog(store localstate.Store, now func() time.Time, log zerolog.Logger) *MutationLog {
	return &MutationLog{store: store, now: now, log: log}
}

// Record stores t as the latest mutation, invalidating every mutation-keyed entry
// written before it.
func (m *MutationLog) Record(t time.Time) {
	b, _ := json.Marshal(latestMood{Timestamp: t.UnixMilli()})
	if err := m.store.Set(latestMoodKey, string(b)); err != nil {
		m.log.Warn().Err(err).Msg("failed to record latest mood")
	}
}

// Latest returns the latest mutation time. An unreadable record is dropped and
// reported as "now" so dependent entries are refetched once.
func (m *MutationLog) Latest() (int64, bool) {
	raw, ok, err := m.store.Get(latestMoodKey)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to read latest mood")
		return m.now().UnixMilli(), true
	}
	if !ok {
		return 0, false
	}
	var lm latestMood
	if err := json.Unmarshal([]byte(raw), &lm); err != nil {
		m.log.Warn().Err(err).Msg("discarding corrupt latest mood record")
		_ = m.store.Remove(latestMoodKey)
		return m.now().UnixMilli(), true
	}
	return lm.Timestamp, true
}

// Clear forgets the latest mutation.
func (m *MutationLog) Clear() {
	_ = m.store.Remove(latestMoodKey)
}
