package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", "v")
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestMemoryStoreCookies(t *testing.T) {
	s := NewMemoryStore()

	s.SetCookie("session", "abc")
	v, ok := s.Cookie("session")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	// Cookies and values are independent surfaces.
	_, ok = s.Get("session")
	assert.False(t, ok)

	s.ClearCookie("session")
	_, ok = s.Cookie("session")
	assert.False(t, ok)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	s.Set("token", "xyz")

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get("token")
	assert.True(t, ok)
	assert.Equal(t, "xyz", v)

	reopened.Delete("token")
	again, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok = again.Get("token")
	assert.False(t, ok)
}

func TestFileStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok := s.Get("anything")
	assert.False(t, ok)
}
