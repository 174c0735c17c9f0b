// Package backend opens the durable store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"todo/internal/backend/boltstore"
	"todo/internal/backend/filestore"
	"todo/internal/backend/sqlitestore"
	"todo/internal/config"
	"todo/internal/store"
)

// Open creates the config directory and opens the store for cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	path := cfg.StorePath()
	switch cfg.Store {
	case config.DriverBolt:
		s, err := boltstore.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlitestore.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverFile:
		s, err := filestore.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store)
	}
}
