package storage

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipnote/internal/client/config"
	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func testConfig(t *testing.T, driver string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.BlobDriver = driver
	return cfg
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"goose_db_version", "metadata", "video_blobs", "image_blobs", "audio_blobs"} {
		assert.True(t, tableExists(t, db, table), table)
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
}

func TestOpen_SQLiteDriver(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BlobDriverSQLite)

	repos, err := Open(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	defer repos.Close()

	assert.IsType(t, &blobs.SQLiteStore{}, repos.Blobs)
	_, err = os.Stat(cfg.DatabasePath())
	require.NoError(t, err)

	require.NoError(t, repos.Blobs.Put(ctx, models.MediaImage, "i", bytes.NewReader([]byte{1}), ""))
	var n int
	require.NoError(t, repos.DB.QueryRow(`SELECT COUNT(*) FROM image_blobs`).Scan(&n))
	assert.Equal(t, 1, n)

	c, err := repos.Notes.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Active)
}

func TestOpen_BucketDriverDefaultsToDataDir(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BlobDriverBucket)

	repos, err := Open(ctx, cfg, logging.Nop())
	require.NoError(t, err)

	require.NoError(t, repos.Blobs.Put(ctx, models.MediaVideo, "v", bytes.NewReader([]byte("frames")), ""))
	require.NoError(t, repos.Close())

	entries, err := os.ReadDir(filepath.Join(cfg.BlobDir(), "video"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "v")
}

func TestOpen_BucketDriverWithURL(t *testing.T) {
	cfg := testConfig(t, config.BlobDriverBucket)
	cfg.BucketURL = "mem://"

	repos, err := Open(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	defer repos.Close()
	assert.IsType(t, &blobs.BucketStore{}, repos.Blobs)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := testConfig(t, "tape")

	_, err := Open(context.Background(), cfg, logging.Nop())
	require.ErrorContains(t, err, "unknown blob driver")
}
