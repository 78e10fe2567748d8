package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

// Config describes one cached resource.
type Config struct {
	// Name labels metrics and logs, e.g. "dominant_mood".
	Name string
	// Key is the base store key; sub-keys are appended as Key_sub.
	Key      string
	Validity Validity
	Store    localstate.Store
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Resource caches values of type T under Config.Key. Storage and decoding
// failures never reach the caller: they degrade to a miss.
type Resource[T any] struct {
	cfg Config
}

// New returns a Resource for cfg.
func New[T any](cfg Config) *Resource[T] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resource[T]{cfg: cfg}
}

// Name reports the resource name.
func (r *Resource[T]) Name() string { return r.cfg.Name }

// Key returns the store key for sub ("" for the unparameterized resource).
func (r *Resource[T]) Key(sub string) string {
	if sub == "" {
		return r.cfg.Key
	}
	return r.cfg.Key + "_" + sub
}

// Peek returns the cached value for sub when it is present and valid. Invalid or
// corrupt entries are removed.
func (r *Resource[T]) Peek(sub string) (T, bool) {
	var zero T
	key := r.Key(sub)

	raw, ok, err := r.cfg.Store.Get(key)
	if err != nil {
		r.cfg.Logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		lookupsTotal.WithLabelValues(r.cfg.Name, "miss").Inc()
		return zero, false
	}
	if !ok {
		lookupsTotal.WithLabelValues(r.cfg.Name, "miss").Inc()
		return zero, false
	}

	var e Entry[T]
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		r.cfg.Logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		lookupsTotal.WithLabelValues(r.cfg.Name, "corrupt").Inc()
		r.remove(key)
		return zero, false
	}

	if !r.cfg.Validity.Valid(e.Timestamp, r.cfg.Now().UnixMilli()) {
		lookupsTotal.WithLabelValues(r.cfg.Name, "stale").Inc()
		r.remove(key)
		return zero, false
	}

	lookupsTotal.WithLabelValues(r.cfg.Name, "hit").Inc()
	return e.Data, true
}

// Get serves sub from cache or calls fetch and caches its result. Fetch errors are
// returned as is and leave the cache empty.
func (r *Resource[T]) Get(ctx context.Context, sub string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := r.Peek(sub); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	r.Put(sub, v)
	return v, nil
}

// Put stores data for sub stamped with the current time.
func (r *Resource[T]) Put(sub string, data T) {
	key := r.Key(sub)
	e := Entry[T]{Data: data, Timestamp: r.cfg.Now().UnixMilli()}
	if v, ok := r.cfg.Validity.(TTLValidity); ok {
		e.TTL = v.TTL.Milliseconds()
	}
	b, err := json.Marshal(e)
	if err != nil {
		r.cfg.Logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := r.cfg.Store.Set(key, string(b)); err != nil {
		r.cfg.Logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate drops the entry for sub.
func (r *Resource[T]) Invalidate(sub string) {
	r.remove(r.Key(sub))
}

// InvalidateAll drops the base entry and every sub-keyed entry.
func (r *Resource[T]) InvalidateAll() {
	r.remove(r.cfg.Key)
	keys, err := r.cfg.Store.Keys(r.cfg.Key + "_")
	if err != nil {
		r.cfg.Logger.Warn().Err(err).Str("resource", r.cfg.Name).Msg("cache key listing failed")
		return
	}
	for _, k := range keys {
		r.remove(k)
	}
}

func (r *Resource[T]) remove(key string) {
	if err := r.cfg.Store.Remove(key); err != nil {
		r.cfg.Logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}
