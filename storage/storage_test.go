package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-scenario-client/storage"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) storage.Storage
}

func backends() []backend {
	return []backend{
		{
			name: "inmemory",
			open: func(t *testing.T) storage.Storage { return storage.NewInMemory() },
		},
		{
			name: "diskv",
			open: func(t *testing.T) storage.Storage {
				s, err := storage.NewDiskv(t.TempDir())
				require.NoError(t, err)
				return s
			},
		},
	}
}

func TestStorage(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("get missing key", func(t *testing.T) {
				s := b.open(t)
				_, err := s.Get(storage.TokenKey)
				require.ErrorIs(t, err, storage.ErrNotFound)
			})

			t.Run("set then get", func(t *testing.T) {
				s := b.open(t)
				require.NoError(t, s.Set(storage.TokenKey, "abc"))
				v, err := s.Get(storage.TokenKey)
				require.NoError(t, err)
				require.Equal(t, "abc", v)

				require.NoError(t, s.Set(storage.TokenKey, "def"))
				v, err = s.Get(storage.TokenKey)
				require.NoError(t, err)
				require.Equal(t, "def", v)
			})

			t.Run("remove", func(t *testing.T) {
				s := b.open(t)
				require.NoError(t, s.Set(storage.TokenKey, "abc"))
				require.NoError(t, s.Remove(storage.TokenKey))
				require.NoError(t, s.Remove(storage.TokenKey))
				_, err := s.Get(storage.TokenKey)
				require.ErrorIs(t, err, storage.ErrNotFound)
			})

			t.Run("clear", func(t *testing.T) {
				s := b.open(t)
				require.NoError(t, s.Set(storage.TokenKey, "abc"))
				require.NoError(t, s.Set(storage.SessionKey, `{"loggedIn":true}`))
				require.NoError(t, s.Clear())
				require.NoError(t, s.Clear())

				_, err := s.Get(storage.TokenKey)
				require.ErrorIs(t, err, storage.ErrNotFound)
				_, err = s.Get(storage.SessionKey)
				require.ErrorIs(t, err, storage.ErrNotFound)

				require.NoError(t, s.Set(storage.TokenKey, "again"))
				v, err := s.Get(storage.TokenKey)
				require.NoError(t, err)
				require.Equal(t, "again", v)
			})

			t.Run("empty key", func(t *testing.T) {
				s := b.open(t)
				require.ErrorIs(t, s.Set("", "x"), storage.ErrEmptyKey)
				_, err := s.Get("")
				require.ErrorIs(t, err, storage.ErrEmptyKey)
			})
		})
	}
}

func TestDiskvSharedDirectory(t *testing.T) {
	dir := t.TempDir()

	first, err := storage.NewDiskv(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(storage.TokenKey, "persisted"))

	second, err := storage.NewDiskv(dir)
	require.NoError(t, err)
	v, err := second.Get(storage.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "persisted", v)
}

func TestDiskvRejectsPathKeys(t *testing.T) {
	s, err := storage.NewDiskv(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Set("../escape", "x"))
}

func TestNewDiskvRequiresDir(t *testing.T) {
	_, err := storage.NewDiskv("")
	require.Error(t, err)
}

func TestDiskvClearKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep me"), 0o600))
	project := filepath.Join(dir, "project")
	require.NoError(t, os.Mkdir(project, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(project, "main.go"), []byte("package main"), 0o600))

	s, err := storage.NewDiskv(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(storage.SessionKey, `{"loggedIn":true}`))
	require.NoError(t, s.Set(storage.TokenKey, "tok"))
	require.NoError(t, s.Clear())

	_, err = s.Get(storage.SessionKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Get(storage.TokenKey)
	require.ErrorIs(t, err, storage.ErrNotFound)

	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	require.Equal(t, "keep me", string(data))
	_, err = os.Stat(filepath.Join(project, "main.go"))
	require.NoError(t, err)
}

func TestDiskvWritesUnderOwnDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewDiskv(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(storage.TokenKey, "tok"))

	require.NotEqual(t, dir, s.Dir())
	_, err = os.Stat(filepath.Join(s.Dir(), storage.TokenKey))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, storage.TokenKey))
	require.True(t, os.IsNotExist(err))
}
