package session

import (
	"testing"

	"github.com/moodly/moodly-client/client/internal/types"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	u := types.User{ID: "u1", Email: "a@b.co", Country: "GB"}
	s := reduce(nil, SetUser(u))
	require.NotNil(t, s)

	s2 := reduce(s, ChangeCountry("FR"))
	assert.Equal(t, "FR", s2.Country)
	assert.Equal(t, "GB", s.Country, "reduce must not mutate its input")

	s3 := reduce(s2, ChangePhoto("https://cdn/p.png"))
	assert.Equal(t, "https://cdn/p.png", s3.PhotoURL)

	s4 := reduce(s3, MarkDeleted())
	assert.True(t, s4.Deleted)

	assert.Nil(t, reduce(s4, Logout()))
	assert.Nil(t, reduce(nil, ChangeCountry("FR")))
}

func TestStore_ShadowRoundTrip(t *testing.T) {
	kv := localstate.NewMemoryStore()
	s := NewStore(kv, zerolog.Nop())
	s.Dispatch(SetUser(types.User{ID: "u1", Email: "a@b.co", Name: "Ana", Country: "ES"}))

	raw, ok, _ := kv.Get(shadowKey)
	require.True(t, ok)
	assert.NotContains(t, raw, "a@b.co", "email is not part of the shadow copy")

	next := NewStore(kv, zerolog.Nop())
	require.True(t, next.Restore())
	st := next.State()
	require.NotNil(t, st)
	assert.Equal(t, "Ana", st.Name)
	assert.True(t, st.Partial)

	next.Dispatch(Logout())
	assert.Nil(t, next.State())
	_, ok, _ = kv.Get(shadowKey)
	assert.False(t, ok)
	assert.False(t, NewStore(kv, zerolog.Nop()).Restore())
}

func TestStore_SubscribersSeeEveryChange(t *testing.T) {
	s := NewStore(localstate.NewMemoryStore(), zerolog.Nop())
	var seen []*UserState
	s.Subscribe(func(st *UserState) { seen = append(seen, st) })

	s.Dispatch(SetUser(types.User{ID: "u1"}))
	s.Dispatch(ChangeCountry("PT"))
	s.Dispatch(Logout())

	require.Len(t, seen, 3)
	assert.Equal(t, "PT", seen[1].Country)
	assert.Nil(t, seen[2])
}

func TestStore_StateIsACopy(t *testing.T) {
	s := NewStore(localstate.NewMemoryStore(), zerolog.Nop())
	s.Dispatch(SetUser(types.User{ID: "u1", Country: "GB"}))
	st := s.State()
	st.Country = "XX"
	assert.Equal(t, "GB", s.State().Country)
}

func TestDeviceID_Stable(t *testing.T) {
	kv := localstate.NewMemoryStore()
	id := DeviceID(kv)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, DeviceID(kv))
}
