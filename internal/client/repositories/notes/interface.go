// Package notes persists the active and archived note collections in the
// settings store and backfills missing note ids on load.
package notes

import (
	"context"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// Settings keys the two collections are serialized under.
const (
	ActiveKey   = "notes"
	ArchivedKey = "archivedNotes"
)

// Repository loads and persists both note collections. The collections are
// always written together.
type Repository interface {
	// Load returns both collections, assigning ids to records that lack one.
	// When any record was migrated, both collections are persisted before
	// Load returns.
	Load(ctx context.Context) (models.Collections, error)

	LoadActive(ctx context.Context) ([]models.NoteRecord, error)
	LoadArchived(ctx context.Context) ([]models.NoteRecord, error)

	// Persist writes both collections in one transaction.
	Persist(ctx context.Context, c models.Collections) error
}
