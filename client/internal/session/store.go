// Package session holds the signed-in user's state for the lifetime of a Client.
// State changes go through Dispatch; a few fields are mirrored into the state store
// so the next run can show the user before /users/me answers.
package session

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/moodly/moodly-client/client/internal/types"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

const (
	shadowKey   = "user_shadow"
	deviceIDKey = "device_id"
)

// UserState is the in-memory view of the signed-in user.
type UserState struct {
	types.User
	// Deleted is only ever seen by subscribers; account deletion clears the
	// state right after.
	Deleted bool `json:"deleted"`
	// Partial is true when the state came from the shadow copy and has not been
	// confirmed by the backend yet.
	Partial bool `json:"-"`
}

// ActionType enumerates the reducer's actions.
type ActionType int

const (
	ActionSetUser ActionType = iota
	ActionChangeCountry
	ActionChangePhoto
	ActionMarkDeleted
	ActionLogout
)

// Action is one state transition.
type Action struct {
	Type    ActionType
	User    types.User
	Country string
	Photo   string
}

// SetUser replaces the whole state.
func SetUser(u types.User) Action { return Action{Type: ActionSetUser, User: u} }

// ChangeCountry patches the country.
func ChangeCountry(code string) Action { return Action{Type: ActionChangeCountry, Country: code} }

// ChangePhoto patches the photo URL.
func ChangePhoto(url string) Action { return Action{Type: ActionChangePhoto, Photo: url} }

// MarkDeleted flags the account as deleted.
func MarkDeleted() Action { return Action{Type: ActionMarkDeleted} }

// Logout clears the state.
func Logout() Action { return Action{Type: ActionLogout} }

// reduce is pure: patches on a nil state are ignored.
func reduce(s *UserState, a Action) *UserState {
	switch a.Type {
	case ActionSetUser:
		return &UserState{User: a.User}
	case ActionLogout:
		return nil
	}
	if s == nil {
		return nil
	}
	next := *s
	switch a.Type {
	case ActionChangeCountry:
		next.Country = a.Country
	case ActionChangePhoto:
		next.PhotoURL = a.Photo
	case ActionMarkDeleted:
		next.Deleted = true
	}
	return &next
}

type shadow struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Country  string `json:"country,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Store is the reducer-backed session store.
type Store struct {
	mu    sync.RWMutex
	state *UserState
	subs  []func(*UserState)
	kv    localstate.Store
	log   zerolog.Logger
}

// NewStore returns an empty Store persisting its shadow copy to kv.
func NewStore(kv localstate.Store, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Restore loads the shadow copy as a partial state. It returns false when there is none.
func (s *Store) Restore() bool {
	raw, ok, err := s.kv.Get(shadowKey)
	if err != nil || !ok {
		return false
	}
	var sh shadow
	if err := json.Unmarshal([]byte(raw), &sh); err != nil || sh.ID == "" {
		_ = s.kv.Remove(shadowKey)
		return false
	}
	s.mu.Lock()
	s.state = &UserState{
		User:    types.User{ID: sh.ID, Name: sh.Name, Country: sh.Country, PhotoURL: sh.PhotoURL},
		Partial: true,
	}
	s.mu.Unlock()
	return true
}

// Dispatch applies a, persists the shadow copy and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = reduce(s.state, a)
	snapshot := copyState(s.state)
	subs := append([]func(*UserState){}, s.subs...)
	s.mu.Unlock()

	s.persist(snapshot)
	for _, fn := range subs {
		fn(copyState(snapshot))
	}
}

// State returns a copy of the current state, or nil when signed out.
func (s *Store) State() *UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Subscribe registers fn to be called after every Dispatch.
func (s *Store) Subscribe(fn func(*UserState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) persist(st *UserState) {
	if st == nil {
		if err := s.kv.Remove(shadowKey); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear session shadow")
		}
		return
	}
	b, _ := json.Marshal(shadow{ID: st.ID, Name: st.Name, Country: st.Country, PhotoURL: st.PhotoURL})
	if err := s.kv.Set(shadowKey, string(b)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session shadow")
	}
}

func copyState(s *UserState) *UserState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// DeviceID returns this installation's stable identifier, creating it on first use.
func DeviceID(kv localstate.Store) string {
	if id, ok, err := kv.Get(deviceIDKey); err == nil && ok && id != "" {
		return id
	}
	id := uuid.NewString()
	_ = kv.Set(deviceIDKey, id)
	return id
}
