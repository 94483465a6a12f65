package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, fs.Put(ctx, "plans", "alpha_Fall 2025", []byte(`{"team_id":"alpha"}`)))

	// Keys are path-escaped so they never escape the collection directory.
	_, err := os.Stat(filepath.Join(dir, "plans", "alpha_Fall%202025.json"))
	require.NoError(t, err)

	require.NoError(t, fs.Put(ctx, "plans", "../evil", []byte(`{}`)))
	_, err = os.Stat(filepath.Join(dir, "evil.json"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(filepath.Join(dir, "plans"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp files must be renamed or removed")
	}
}

func TestFileStore_QueryIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, fs.Put(ctx, "teams", "alpha", []byte(`{"team_id":"alpha"}`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams", "README.txt"), []byte("notes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "teams", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams", ".tmp-123456"), []byte(`{"team_id":"partial"}`), 0o644))

	docs, err := fs.Query(ctx, "teams", Query{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFileStore_QueryKeepsDotPrefixedKeys(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, fs.Put(ctx, "teams", ".alpha", []byte(`{"team_id":".alpha"}`)))
	require.NoError(t, fs.Put(ctx, "teams", ".tmp-x", []byte(`{"team_id":".tmp-x"}`)))

	docs, err := fs.Query(ctx, "teams", Query{})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
