package notes

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clipnote/internal/dbx"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

// SQLiteRepository keeps the collections as JSON arrays in the metadata
// table.
type SQLiteRepository struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB, log logging.Logger) *SQLiteRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLiteRepository{db: db, log: log, now: time.Now}
}

func (r *SQLiteRepository) Load(ctx context.Context) (models.Collections, error) {
	settings := metadata.NewSQLiteRepository(r.db)

	active, err := r.read(ctx, settings, ActiveKey)
	if err != nil {
		return models.Collections{}, err
	}
	archived, err := r.read(ctx, settings, ArchivedKey)
	if err != nil {
		return models.Collections{}, err
	}
	c := models.Collections{Active: active, Archived: archived}

	migrated := r.backfillIDs(c.Active) + r.backfillIDs(c.Archived)
	if migrated > 0 {
		r.log.Info(ctx, "assigned ids to legacy notes", "count", migrated)
		if err := r.Persist(ctx, c); err != nil {
			return models.Collections{}, fmt.Errorf("failed to persist migrated notes: %w", err)
		}
	}
	return c, nil
}

func (r *SQLiteRepository) LoadActive(ctx context.Context) ([]models.NoteRecord, error) {
	c, err := r.Load(ctx)
	return c.Active, err
}

func (r *SQLiteRepository) LoadArchived(ctx context.Context) ([]models.NoteRecord, error) {
	c, err := r.Load(ctx)
	return c.Archived, err
}

func (r *SQLiteRepository) Persist(ctx context.Context, c models.Collections) error {
	active, err := encode(c.Active)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ActiveKey, err)
	}
	archived, err := encode(c.Archived)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ArchivedKey, err)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			ActiveKey:   active,
			ArchivedKey: archived,
		})
	})
}

// read decodes one collection element by element. Elements that fail to
// decode are skipped.
func (r *SQLiteRepository) read(ctx context.Context, settings metadata.Repository, key string) ([]models.NoteRecord, error) {
	raw, err := settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.NoteRecord{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	recs := make([]models.NoteRecord, 0, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			r.log.Warn(ctx, "skipping null note", "collection", key, "index", i)
			continue
		}
		var rec models.NoteRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			r.log.Warn(ctx, "skipping malformed note", "collection", key, "index", i, "error", err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *SQLiteRepository) backfillIDs(recs []models.NoteRecord) int {
	n := 0
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = models.NewNoteID(r.now())
			n++
		}
	}
	return n
}

func encode(recs []models.NoteRecord) ([]byte, error) {
	if recs == nil {
		recs = []models.NoteRecord{}
	}
	return json.Marshal(recs)
}
