package credfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lindero/lindero-auth/internal/adapter/credfile"
	"github.com/lindero/lindero-auth/internal/session"
)

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "credentials.json")
	store := credfile.New(path)

	_, found, err := store.Load()
	require.NoError(t, err)
	require.False(t, found)

	env := session.Envelope{
		Token:        "access-token",
		RefreshToken: "refresh-token",
		User:         session.User{ID: "1", Email: "a@b.com", Name: "A"},
	}
	require.NoError(t, store.Save(env))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, env, loaded)

	require.NoError(t, store.Clear())
	_, found, err = store.Load()
	require.NoError(t, err)
	require.False(t, found)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestLoadToleratesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := credfile.New(path)
	_, found, err := store.Load()
	require.NoError(t, err)
	require.False(t, found)
}

func TestLoadIgnoresEnvelopeWithoutToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"id":"1"}}`), 0o600))

	store := credfile.New(path)
	_, found, err := store.Load()
	require.NoError(t, err)
	require.False(t, found)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := credfile.New(path)

	require.NoError(t, store.Save(session.Envelope{Token: "first", User: session.User{ID: "1"}}))
	require.NoError(t, store.Save(session.Envelope{Token: "second", User: session.User{ID: "1"}}))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "second", loaded.Token)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
