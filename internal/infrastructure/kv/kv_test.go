package kv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elobenin/rental-portal/internal/core/ports"
)

func exerciseMedium(t *testing.T, m ports.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "user", `{"id":"1"}`))
	v, ok, err := m.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, v)

	require.NoError(t, m.Set(ctx, "user", `{"id":"2"}`))
	v, _, err = m.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"2"}`, v)

	require.NoError(t, m.Remove(ctx, "user"))
	require.NoError(t, m.Remove(ctx, "user"))
	_, ok, err = m.Get(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseMedium(t, NewMemory())
}

func TestFile(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "profile", "storage.json"), zerolog.Nop())
	require.NoError(t, err)
	exerciseMedium(t, f)
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	first, err := NewFile(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "user", "alice"))
	require.NoError(t, first.Set(ctx, "theme", "dark"))

	second, err := NewFile(path, zerolog.Nop())
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_UnreadableFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var logs bytes.Buffer
	f, err := NewFile(path, zerolog.New(&logs))
	require.NoError(t, err)
	_, ok, err := f.Get(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), path)

	aside, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err, "unreadable file should be kept aside")
	assert.Equal(t, "{not json", string(aside))

	require.NoError(t, f.Set(ctx, "user", "bob"))
	v, _, err := f.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "bob", v)

	aside, err = os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(aside), "writes must not touch the quarantined file")
}

func TestNewFile_RequiresPath(t *testing.T) {
	_, err := NewFile("  ", zerolog.Nop())
	assert.Error(t, err)
}
