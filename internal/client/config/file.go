package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig is the DTO decoded from a config file. Pointer fields tell an
// absent key from an explicit zero value.
type FileConfig struct {
	DataDir          *string `json:"data_dir" yaml:"data_dir"`
	DatabaseFile     *string `json:"database_file" yaml:"database_file"`
	BlobDriver       *string `json:"blob_driver" yaml:"blob_driver"`
	BucketURL        *string `json:"bucket_url" yaml:"bucket_url"`
	EventsURL        *string `json:"events_url" yaml:"events_url"`
	LogLevel         *string `json:"log_level" yaml:"log_level"`
	HydrationWorkers *int    `json:"hydration_workers" yaml:"hydration_workers"`
}

// LoadFile overlays c with the keys present in the file at path. Files
// ending in .yaml or .yml are decoded as YAML, anything else as JSON.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fc.apply(c)
	return nil
}

func (fc FileConfig) apply(c *Config) {
	set(&c.DataDir, fc.DataDir)
	set(&c.DatabaseFile, fc.DatabaseFile)
	set(&c.BlobDriver, fc.BlobDriver)
	set(&c.BucketURL, fc.BucketURL)
	set(&c.EventsURL, fc.EventsURL)
	set(&c.LogLevel, fc.LogLevel)
	set(&c.HydrationWorkers, fc.HydrationWorkers)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
