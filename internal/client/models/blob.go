package models

import "io"

// BlobEntry is one row of a blob store.
type BlobEntry struct {
	ID      string
	Payload []byte
	// Name is the display name; only audio entries carry one.
	Name string
}

// BlobInfo describes a stored blob without its payload.
type BlobInfo struct {
	ID   string
	Name string
	Size int64
}

// Upload is a file handed to a draft by the presentation layer.
type Upload struct {
	Name        string
	ContentType string
	Data        io.Reader
}
