package database

import (
	"context"
	"fmt"
	"log/slog"
)

// Supported values for the database.driver setting.
const (
	DriverSQLite = "sqlite"
	DriverBbolt  = "bbolt"
)

// Open connects to the configured backend and ensures its schema exists.
// Any error here is fatal to startup.
func Open(ctx context.Context, driver, path string, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch driver {
	case DriverSQLite:
		db, dbErr := NewDB(path)
		if dbErr != nil {
			return nil, dbErr
		}
		store = NewStore(db, path, logger)
	case DriverBbolt:
		store, err = NewBoltStore(path, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil && logger != nil {
			logger.Error("Error closing database after schema failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return store, nil
}
