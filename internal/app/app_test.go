package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/store"
)

func TestNew_MemoryWiresEverything(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, Config{}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Len(t, a.Todos.All(ctx), 7)
	assert.Equal(t, 7, a.Stats.Statistics(ctx).TotalTasks)

	id := a.Todos.All(ctx)[0].ID
	require.True(t, a.Dashboard.Delete(ctx, id))
	n := a.Notifications.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, models.SeverityWarning, n[0].Severity)
	assert.Equal(t, 6, a.Stats.Statistics(ctx).TotalTasks)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Store: store.Config{Driver: "redis"}}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_SQLitePersistsAcrossApps(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Store: store.Config{Driver: store.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "todo.db")}}

	a, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	added := a.Todos.Add(ctx, models.TodoItem{Title: "persist me"})
	res := a.Auth.Login(ctx, models.Credentials{Username: "bob", Password: "short1A!", RememberMe: true})
	require.True(t, res.Success)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	got, ok := b.Todos.Get(ctx, added.ID)
	require.True(t, ok)
	assert.Equal(t, "persist me", got.Title)
	assert.Len(t, b.Todos.All(ctx), 8)
	assert.True(t, b.Auth.IsAuthenticated(ctx))
}
