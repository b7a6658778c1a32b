package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	var out []string
	found, err := store.Get("never_written", &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPutOverwritesWholeValue(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(KeySnapshot, []string{"a", "b", "c"}))
	require.NoError(t, store.Put(KeySnapshot, []string{"d"}))

	var out []string
	found, err := store.Get(KeySnapshot, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"d"}, out)
}

func TestKeysAreIndependent(t *testing.T) {
	store := openTestStore(t)

	type cfg struct {
		URL string `json:"url"`
	}
	require.NoError(t, store.Put(KeyConfig, cfg{URL: "https://example.supabase.co"}))
	require.NoError(t, store.Put(KeySnapshot, []int{1, 2}))

	var c cfg
	found, err := store.Get(KeyConfig, &c)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "https://example.supabase.co", c.URL)
}
