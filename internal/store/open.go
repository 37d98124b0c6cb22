package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures a Store implementation.
type Config struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Open returns the configured store. When a durable driver cannot be opened
// the failure is logged and a MemoryStore is returned instead. Only an
// unknown driver name is reported as an error.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil

	case DriverSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath, logger)
		if err != nil {
			return fallback(logger, cfg.Driver, err), nil
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return fallback(logger, cfg.Driver, err), nil
		}
		return s, nil

	case DriverPostgres:
		s, err := NewPostgresStore(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return fallback(logger, cfg.Driver, err), nil
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return fallback(logger, cfg.Driver, err), nil
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q (use: memory, sqlite, postgres)", cfg.Driver)
}

func fallback(logger zerolog.Logger, driver string, err error) Store {
	logger.Warn().
		Err(err).
		Str("driver", driver).
		Msg("durable store unavailable, falling back to in-memory store")
	return NewMemoryStore()
}
