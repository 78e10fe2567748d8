// Package genlock marks an AI insight generation as in flight so a second request
// (from this process or after a restart) does not start a duplicate. The mark
// expires on read: an abandoned generation frees itself the next time anyone checks.
package genlock

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

const statusKey = "ai_insights_generation_status"

// DefaultTimeout is how long a generation may stay marked in progress.
const DefaultTimeout = 90 * time.Second

// Status is the persisted generation record; StartedAt is unix milliseconds.
type Status struct {
	InProgress bool  `json:"inProgress"`
	StartedAt  int64 `json:"startedAt"`
}

// Lock guards insight generation.
type Lock struct {
	mu      sync.Mutex
	store   localstate.Store
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// New returns a Lock. A non-positive timeout means DefaultTimeout; now may be nil.
func New(store localstate.Store, timeout time.Duration, now func() time.Time, log zerolog.Logger) *Lock {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Lock{store: store, timeout: timeout, now: now, log: log}
}

// InProgress reports whether a generation is running. An expired or unreadable
// record is cleared and reported as not running.
func (l *Lock) InProgress() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inProgressLocked()
}

// Set marks a generation as started now.
func (l *Lock) Set() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setLocked()
}

// TryAcquire sets the mark unless a live one exists, atomically within this process.
func (l *Lock) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inProgressLocked() {
		return false
	}
	l.setLocked()
	return true
}

// Clear removes the mark.
func (l *Lock) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLocked()
}

func (l *Lock) inProgressLocked() bool {
	raw, ok, err := l.store.Get(statusKey)
	if err != nil {
		l.log.Warn().Err(err).Msg("generation status read failed")
		return false
	}
	if !ok {
		return false
	}
	var st Status
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		l.clearLocked()
		return false
	}
	if !st.InProgress || l.now().UnixMilli()-st.StartedAt > l.timeout.Milliseconds() {
		l.clearLocked()
		return false
	}
	return true
}

func (l *Lock) setLocked() {
	b, _ := json.Marshal(Status{InProgress: true, StartedAt: l.now().UnixMilli()})
	if err := l.store.Set(statusKey, string(b)); err != nil {
		l.log.Warn().Err(err).Msg("generation status write failed")
	}
}

func (l *Lock) clearLocked() {
	if err := l.store.Remove(statusKey); err != nil {
		l.log.Warn().Err(err).Msg("generation status clear failed")
	}
}
