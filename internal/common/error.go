// Package common defines shared constants, sentinel errors and small helpers
// used across the ClipNote client packages. Callers should use errors.Is to
// match the error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors for malformed persisted data.
	ErrorMissingID = errors.New("missing id")
)
