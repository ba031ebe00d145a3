package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/clipnote/internal/logging"
)

// Blob drivers.
const (
	BlobDriverSQLite = "sqlite"
	BlobDriverBucket = "bucket"
)

// Config holds runtime settings for the ClipNote CLI.
//
// Fields:
//   - DataDir: directory holding the database and, by default, bucket blobs.
//   - DatabaseFile: SQLite file name, relative to DataDir unless absolute.
//   - BlobDriver: "sqlite" keeps blobs in the database, "bucket" in a
//     gocloud.dev bucket.
//   - BucketURL: bucket for the "bucket" driver; defaults to DataDir/blobs.
//   - EventsURL: optional gocloud.dev pubsub topic for lifecycle events.
type Config struct {
	DataDir          string
	DatabaseFile     string
	BlobDriver       string
	BucketURL        string
	EventsURL        string
	LogLevel         string
	HydrationWorkers int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.DatabaseFile = "clipnote.db"
	c.BlobDriver = BlobDriverSQLite
	c.BucketURL = ""
	c.EventsURL = ""
	c.LogLevel = "info"
	c.HydrationWorkers = 4
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clipnote"
	}
	return filepath.Join(home, ".clipnote")
}

// Load builds a Config from defaults overlaid with the file at path. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.BlobDriver {
	case BlobDriverSQLite, BlobDriverBucket:
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.DatabaseFile == "" {
		return fmt.Errorf("database file is required")
	}
	if c.HydrationWorkers <= 0 {
		return fmt.Errorf("hydration workers must be positive, got %d", c.HydrationWorkers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DatabasePath resolves DatabaseFile against DataDir.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.DatabaseFile) {
		return c.DatabaseFile
	}
	return filepath.Join(expandHome(c.DataDir), c.DatabaseFile)
}

// BlobDir is the directory backing the default bucket.
func (c *Config) BlobDir() string {
	return filepath.Join(expandHome(c.DataDir), "blobs")
}

// ResolvedBucketURL returns BucketURL, or a file:// URL for BlobDir.
func (c *Config) ResolvedBucketURL() (string, error) {
	if c.BucketURL != "" {
		return c.BucketURL, nil
	}
	dir, err := filepath.Abs(c.BlobDir())
	if err != nil {
		return "", fmt.Errorf("failed to resolve blob dir: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}
	return u.String(), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
