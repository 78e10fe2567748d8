// Package logoutqueue makes sure the backend eventually hears about a logout whose
// first attempt failed. The user's logout has already happened locally; this queue
// only informs the server, retrying across restarts until it succeeds or gives up.
package logoutqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

const pendingKey = "pending_logout"

// Record is the persisted pending logout. Timestamp is unix milliseconds of the
// original logout.
type Record struct {
	Timestamp int64 `json:"timestamp"`
	Attempts  int   `json:"attempts"`
}

// SendFunc delivers one logout attempt. Wrapping the error with backoff.Permanent
// tells the queue that retrying cannot help and the record should be dropped.
type SendFunc func(ctx context.Context, rec Record) error

// Outcome is the result of one Tick.
type Outcome int

const (
	// OutcomeIdle means there was nothing pending.
	OutcomeIdle Outcome = iota
	// OutcomeResolved means the server accepted the logout; the record is gone.
	OutcomeResolved
	// OutcomeRetry means the attempt failed and another is scheduled.
	OutcomeRetry
	// OutcomeAbandoned means the record was too old or tried too often and was dropped.
	OutcomeAbandoned
	// OutcomeDropped means the send failed permanently (the server session is
	// already gone); the record was removed without further retries.
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeResolved:
		return "resolved"
	case OutcomeRetry:
		return "retry"
	case OutcomeAbandoned:
		return "abandoned"
	case OutcomeDropped:
		return "dropped"
	}
	return "unknown"
}

// Config bounds the retry schedule. Zero values take the defaults.
type Config struct {
	BaseInterval time.Duration // default 30s
	MaxInterval  time.Duration // default 10m
	MaxAttempts  int           // default 10; a record with more attempts is abandoned
	MaxAge       time.Duration // default 24h
}

// Queue owns the pending-logout record and its retry loop.
type Queue struct {
	cfg   Config
	store localstate.Store
	send  SendFunc
	now   func() time.Time
	log   zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New returns a Queue. now may be nil.
func New(cfg Config, store localstate.Store, send SendFunc, now func() time.Time, log zerolog.Logger) *Queue {
	if cfg.BaseInterval <= 0 {
		cfg.BaseInterval = 30 * time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Queue{cfg: cfg, store: store, send: send, now: now, log: log}
}

// Interval is the wait before the retry that follows attempt number attempts:
// base * 2^(attempts-1), capped at max.
func Interval(base, max time.Duration, attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = max
	b.MaxElapsedTime = 0
	b.Reset()

	d := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Enqueue records a failed logout made at now as attempt 1, replacing any older record.
func (q *Queue) Enqueue(now time.Time) error {
	return q.save(Record{Timestamp: now.UnixMilli(), Attempts: 1})
}

// Pending returns the persisted record, if any. A corrupt record is dropped.
func (q *Queue) Pending() (Record, bool) {
	raw, ok, err := q.store.Get(pendingKey)
	if err != nil || !ok {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		q.log.Warn().Err(err).Msg("dropping corrupt pending logout")
		q.clear()
		return Record{}, false
	}
	return rec, true
}

// Tick performs one step of the retry state machine.
func (q *Queue) Tick(ctx context.Context) (Outcome, error) {
	rec, ok := q.Pending()
	if !ok {
		return OutcomeIdle, nil
	}

	age := q.now().Sub(time.UnixMilli(rec.Timestamp))
	if age > q.cfg.MaxAge || rec.Attempts > q.cfg.MaxAttempts {
		q.clear()
		retryTotal.WithLabelValues(OutcomeAbandoned.String()).Inc()
		q.log.Error().
			Int("attempts", rec.Attempts).
			Dur("age", age).
			Msg("giving up on server logout")
		return OutcomeAbandoned, nil
	}

	if err := q.send(ctx, rec); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			q.clear()
			retryTotal.WithLabelValues(OutcomeDropped.String()).Inc()
			q.log.Info().Err(perm.Err).Int("attempts", rec.Attempts).Msg("server session already ended; dropping pending logout")
			return OutcomeDropped, nil
		}
		rec.Attempts++
		if serr := q.save(rec); serr != nil {
			q.log.Warn().Err(serr).Msg("failed to persist logout attempt count")
		}
		retryTotal.WithLabelValues(OutcomeRetry.String()).Inc()
		q.log.Debug().Err(err).Int("attempts", rec.Attempts).Msg("logout retry failed")
		return OutcomeRetry, err
	}

	q.clear()
	retryTotal.WithLabelValues(OutcomeResolved.String()).Inc()
	q.log.Info().Int("attempts", rec.Attempts).Msg("deferred logout delivered")
	return OutcomeResolved, nil
}

// Start runs the retry loop in the background until the record is resolved or
// abandoned, ctx ends, or Stop is called. Starting a running queue is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.done = make(chan struct{})
	q.running = true
	go q.run(ctx, q.done)
}

// Stop cancels the loop and waits for it to exit. Safe to call when not running.
func (q *Queue) Stop() {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the retry loop is active.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

func (q *Queue) run(ctx context.Context, done chan struct{}) {
	defer func() {
		q.mu.Lock()
		q.running = false
		q.cancel = nil
		q.mu.Unlock()
		close(done)
	}()

	for {
		rec, ok := q.Pending()
		if !ok {
			return
		}
		timer := time.NewTimer(Interval(q.cfg.BaseInterval, q.cfg.MaxInterval, rec.Attempts))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		outcome, _ := q.Tick(ctx)
		if outcome != OutcomeRetry {
			return
		}
	}
}

func (q *Queue) save(rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return q.store.Set(pendingKey, string(b))
}

func (q *Queue) clear() {
	if err := q.store.Remove(pendingKey); err != nil {
		q.log.Warn().Err(err).Msg("failed to clear pending logout")
	}
}
