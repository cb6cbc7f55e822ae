package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keys.json")
	store := NewStore(path)

	_, ok := store.Get("example.com")
	assert.False(t, ok)

	require.NoError(t, store.Put("example.com", "abcdefgh-12345"))
	require.NoError(t, store.Put("other.org", "zyxwvuts-98765"))

	key, ok := store.Get("example.com")
	require.True(t, ok)
	assert.Equal(t, Key("abcdefgh-12345"), key)

	// A fresh store instance reads the same file.
	key, ok = NewStore(path).Get("other.org")
	require.True(t, ok)
	assert.Equal(t, Key("zyxwvuts-98765"), key)
}

func TestStoreOverwrite(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "keys.json"))

	require.NoError(t, store.Put("example.com", "firstkey-001"))
	require.NoError(t, store.Put("example.com", "secondkey-002"))

	key, ok := store.Get("example.com")
	require.True(t, ok)
	assert.Equal(t, Key("secondkey-002"), key)
}

func TestStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewStore(path)
	_, ok := store.Get("example.com")
	assert.False(t, ok)

	// Writing through the corrupt file replaces it.
	require.NoError(t, store.Put("example.com", "abcdefgh-12345"))
	key, ok := store.Get("example.com")
	require.True(t, ok)
	assert.Equal(t, Key("abcdefgh-12345"), key)
}
