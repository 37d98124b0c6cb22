package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath, zerolog.Nop())
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

// testStoreContract exercises the behaviour every Store must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok := s.Get(ctx, "missing")
	assert.False(t, ok, "unknown key should be absent")

	s.Set(ctx, KeyTheme, "light")
	v, ok := s.Get(ctx, KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "light", v)

	s.Set(ctx, KeyTheme, "dark")
	v, ok = s.Get(ctx, KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", v, "set should overwrite")

	s.Set(ctx, KeyAuthUser, "")
	v, ok = s.Get(ctx, KeyAuthUser)
	assert.True(t, ok, "empty value is still present")
	assert.Empty(t, v)

	s.Remove(ctx, KeyTheme)
	_, ok = s.Get(ctx, KeyTheme)
	assert.False(t, ok, "removed key should be absent")

	// Removing an absent key is a no-op.
	s.Remove(ctx, "never-set")
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestSQLiteStore_Contract(t *testing.T) {
	testStoreContract(t, newTestStore(t))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "todo.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	s.Set(ctx, KeyTodoItems, `[{"id":"a"}]`)
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Migrate(ctx))

	v, ok := s2.Get(ctx, KeyTodoItems)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)
}

func TestSQLiteStore_ClosedDBDegradesToAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Set(ctx, "k", "v")
	require.NoError(t, s.Close())

	// Must not panic or surface an error.
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)
	s.Set(ctx, "k", "v2")
	s.Remove(ctx, "k")
}
