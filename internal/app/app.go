// Package app constructs the core components once and wires them together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/joescharf/todo/internal/auth"
	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/notify"
	"github.com/joescharf/todo/internal/stats"
	"github.com/joescharf/todo/internal/store"
	"github.com/joescharf/todo/internal/theme"
	"github.com/joescharf/todo/internal/todo"
)

// Config collects the settings of every core component.
type Config struct {
	Store        store.Config
	Auth         auth.Config
	UndoWindow   time.Duration
	NotifyBuffer int
}

// App holds the wired core of one process.
type App struct {
	Store         store.Store
	Todos         *todo.Repository
	Auth          *auth.Gate
	Stats         *stats.Aggregator
	Notifications *notify.Queue
	Dashboard     *dashboard.Dashboard
	Theme         *theme.Service

	log zerolog.Logger
}

// New opens the store and builds every component on top of it. The todo
// collection is loaded (or seeded) before New returns.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*App, error) {
	kv, err := store.Open(ctx, cfg.Store, logger.With().Str("component", "store").Logger())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	repo := todo.NewRepository(kv, todo.WithLogger(logger.With().Str("component", "todo").Logger()))
	repo.Load(ctx)

	queue := notify.NewQueue(cfg.NotifyBuffer, logger.With().Str("component", "notify").Logger())

	a := &App{
		Store:         kv,
		Todos:         repo,
		Auth:          auth.NewGate(kv, cfg.Auth, auth.WithLogger(logger.With().Str("component", "auth").Logger())),
		Stats:         stats.NewAggregator(repo),
		Notifications: queue,
		Dashboard: dashboard.New(repo, queue,
			dashboard.WithUndoWindow(cfg.UndoWindow),
			dashboard.WithLogger(logger.With().Str("component", "dashboard").Logger()),
		),
		Theme: theme.New(kv),
		log:   logger,
	}
	logger.Debug().Str("driver", cfg.Store.Driver).Msg("app ready")
	return a, nil
}

// Close releases the store and stops background timers.
func (a *App) Close() error {
	a.Dashboard.Close()
	a.Notifications.Close()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
