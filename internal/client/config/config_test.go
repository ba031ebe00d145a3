package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.NotEmpty(t, c.DataDir)
	assert.Equal(t, "clipnote.db", c.DatabaseFile)
	assert.Equal(t, BlobDriverSQLite, c.BlobDriver)
	assert.Empty(t, c.BucketURL)
	assert.Empty(t, c.EventsURL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 4, c.HydrationWorkers)
	require.NoError(t, c.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bucket driver", func(c *Config) { c.BlobDriver = BlobDriverBucket }, ""},
		{"unknown driver", func(c *Config) { c.BlobDriver = "s3" }, "unknown blob driver"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data dir is required"},
		{"empty database file", func(c *Config) { c.DatabaseFile = "" }, "database file is required"},
		{"zero workers", func(c *Config) { c.HydrationWorkers = 0 }, "hydration workers"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabasePath(t *testing.T) {
	c := Config{DataDir: "/data", DatabaseFile: "notes.db"}
	assert.Equal(t, filepath.Join("/data", "notes.db"), c.DatabasePath())

	abs := filepath.Join(t.TempDir(), "elsewhere.db")
	c.DatabaseFile = abs
	assert.Equal(t, abs, c.DatabasePath())
}

func TestResolvedBucketURL(t *testing.T) {
	dir := t.TempDir()
	c := Config{DataDir: dir}

	u, err := c.ResolvedBucketURL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"), u)
	assert.True(t, strings.HasSuffix(u, "/blobs"), u)

	c.BucketURL = "mem://"
	u, err = c.ResolvedBucketURL()
	require.NoError(t, err)
	assert.Equal(t, "mem://", u)
}
