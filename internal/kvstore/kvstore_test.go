package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends that can be rebuilt from the same location, to verify
// durability across a reopen.
func testBackend(t *testing.T, open func(t *testing.T, path string) KV) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data")

	t.Run("get of an absent key reports not ok", func(t *testing.T) {
		kv := open(t, filepath.Join(dir, "absent"))

		_, ok, err := kv.Get("it_user")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		kv := open(t, path)

		require.NoError(t, kv.Set("it_user", "Awa"))
		require.NoError(t, kv.Set("it_theme", "dark"))
		require.NoError(t, kv.Set("it_theme", "light"))

		value, ok, err := kv.Get("it_theme")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "light", value)
	})

	t.Run("values survive a reopen", func(t *testing.T) {
		kv := open(t, path)

		value, ok, err := kv.Get("it_user")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Awa", value)
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		kv := open(t, path)

		require.NoError(t, kv.Delete("it_user"))
		require.NoError(t, kv.Delete("it_user"))

		_, ok, err := kv.Get("it_user")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFileStore(t *testing.T) {
	testBackend(t, func(t *testing.T, path string) KV {
		fs, err := NewFileStore(path + ".json")
		require.NoError(t, err)
		return fs
	})
}

func TestFileStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set("it_user", "Awa"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	value, ok, err := reopened.Get("it_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Awa", value)
}

func TestSQLiteStore(t *testing.T) {
	testBackend(t, func(t *testing.T, path string) KV {
		sq, err := NewSQLiteStore(path + ".db")
		require.NoError(t, err)
		t.Cleanup(func() { _ = sq.Close() })
		return sq
	})
}

func TestMemory(t *testing.T) {
	kv := NewMemory()

	require.NoError(t, kv.Set("a", "1"))
	require.NoError(t, kv.Set("b", "2"))
	assert.Equal(t, 2, kv.Len())

	require.NoError(t, kv.Delete("a"))
	assert.Equal(t, 1, kv.Len())

	_, ok, err := kv.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}
