package storage

import (
	"context"
	"fmt"

	"github.com/zjgaokao/major-advisor/internal/config"
	"github.com/zjgaokao/major-advisor/internal/major"
)

// Open builds the configured backend and loads majors into it.
func Open(ctx context.Context, cfg config.CatalogConfig, majors []major.Major) (Repository, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemoryStore(majors)
	case config.BackendSQLite:
		db, err := New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Seed(ctx, majors); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}
