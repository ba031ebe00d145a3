package blobs

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// ErrUnknownKind is returned for a media kind no store exists for.
var ErrUnknownKind = errors.New("unknown media kind")

// Store is key/value CRUD over the three attachment stores. Reads of a
// missing id fail with common.ErrorNotFound.
type Store interface {
	// Put writes or replaces an entry. name is kept for audio and ignored
	// for other kinds.
	Put(ctx context.Context, kind models.MediaKind, id string, payload io.Reader, name string) error

	// Get returns the full entry.
	Get(ctx context.Context, kind models.MediaKind, id string) (models.BlobEntry, error)

	// Open streams the payload. The caller closes the reader.
	Open(ctx context.Context, kind models.MediaKind, id string) (io.ReadCloser, error)

	// Stat reports existence, name and size without reading the payload.
	Stat(ctx context.Context, kind models.MediaKind, id string) (models.BlobInfo, error)

	// Rename replaces the display name of an existing entry.
	Rename(ctx context.Context, kind models.MediaKind, id string, name string) error

	// Delete removes an entry. Deleting an absent id is not an error.
	Delete(ctx context.Context, kind models.MediaKind, id string) error

	// ListKeys returns every id of a kind in ascending order.
	ListKeys(ctx context.Context, kind models.MediaKind) ([]string, error)
}
