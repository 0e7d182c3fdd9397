package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewFileStore(path)

	_, ok, err := s.Get("current_page")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("current_page", "commissions"))
	require.NoError(t, s.Set("theme", "dark"))

	again := NewFileStore(path)
	v, ok, err := again.Get("current_page")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "commissions", v)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, _, err := NewFileStore(path).Get("x")
	require.Error(t, err)
}

func TestDefaultPathUsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	p, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, "state.json", filepath.Base(p))
	require.Equal(t, "kilowatt", filepath.Base(filepath.Dir(p)))
}

func TestMemoryStore(t *testing.T) {
	var s Store = NewMemoryStore()
	require.NoError(t, s.Set("a", "1"))
	v, ok, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)
}
