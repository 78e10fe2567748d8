package localstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the behaviour every Store implementation must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("dominant_mood_today", `{"data":1}`))
	require.NoError(t, s.Set("dominant_mood_week", `{"data":2}`))
	require.NoError(t, s.Set("latest_mood", `{"timestamp":5}`))

	v, ok, err := s.Get("dominant_mood_today")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"data":1}`, v)

	// overwrite wins
	require.NoError(t, s.Set("dominant_mood_today", `{"data":3}`))
	v, _, _ = s.Get("dominant_mood_today")
	assert.Equal(t, `{"data":3}`, v)

	keys, err := s.Keys("dominant_mood")
	require.NoError(t, err)
	assert.Equal(t, []string{"dominant_mood_today", "dominant_mood_week"}, keys)

	require.NoError(t, s.Remove("dominant_mood_today"))
	require.NoError(t, s.Remove("never-set"))
	_, ok, _ = s.Get("dominant_mood_today")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	storeContract(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("pending_logout", `{"timestamp":1,"attempts":2}`))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()
	v, ok, err := s2.Get("pending_logout")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"timestamp":1,"attempts":2}`, v)
}

func TestOpenDefault_UsesStateDir(t *testing.T) {
	t.Setenv(StateDirEnv, t.TempDir())
	s, err := OpenDefault()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Set("k", "v"))
}
