// Package config loads runtime configuration for the ClipNote CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see LoadFile), JSON or YAML by extension,
//     selected with -c/--config.
//  3. Command-line flags, applied by the CLI only when set explicitly.
//
// # File schema
//
// JSON and YAML share the same keys. Absent keys keep their defaults:
//
//	{
//	  "data_dir": "~/.clipnote",
//	  "database_file": "clipnote.db",
//	  "blob_driver": "bucket",
//	  "bucket_url": "file:///var/lib/clipnote/blobs",
//	  "events_url": "mem://clipnote",
//	  "log_level": "debug",
//	  "hydration_workers": 8
//	}
//
// Note: This package does not read environment variables.
package config
