// Package storage opens the local store: the SQLite database with its
// migrations, the settings and note repositories, and the configured blob
// driver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/clipnote/internal/client/config"
	"github.com/dmitrijs2005/clipnote/internal/client/migrations"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/clipnote/internal/dbx"
	"github.com/dmitrijs2005/clipnote/internal/filex"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Notes    notes.Repository
	Blobs    blobs.Store

	closers []func() error
}

// Close releases the blob driver and the database.
func (r *Repositories) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db)
}

// InitDatabase opens the SQLite database at dsn and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := dbx.Open(dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Open prepares the data directory and opens every repository described by
// cfg.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*Repositories, error) {
	if _, err := filex.EnsureDir(filepath.Dir(cfg.DatabasePath())); err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}

	db, err := InitDatabase(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos := &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Notes:    notes.NewSQLiteRepository(db, log),
		closers:  []func() error{db.Close},
	}

	switch cfg.BlobDriver {
	case config.BlobDriverSQLite:
		repos.Blobs = blobs.NewSQLiteStore(db)
	case config.BlobDriverBucket:
		store, err := openBucket(ctx, cfg)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		repos.Blobs = store
		repos.closers = append(repos.closers, store.Close)
	default:
		_ = repos.Close()
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}

	log.Debug(ctx, "storage opened", "database", cfg.DatabasePath(), "blob_driver", cfg.BlobDriver)
	return repos, nil
}

func openBucket(ctx context.Context, cfg *config.Config) (*blobs.BucketStore, error) {
	if cfg.BucketURL == "" {
		if _, err := filex.EnsureDir(cfg.BlobDir()); err != nil {
			return nil, fmt.Errorf("failed to prepare blob dir: %w", err)
		}
	}
	u, err := cfg.ResolvedBucketURL()
	if err != nil {
		return nil, err
	}
	return blobs.OpenBucketStore(ctx, u)
}
