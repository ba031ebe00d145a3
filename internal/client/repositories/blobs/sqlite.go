package blobs

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/common"
	"github.com/dmitrijs2005/clipnote/internal/dbx"
)

var tables = map[models.MediaKind]string{
	models.MediaVideo: "video_blobs",
	models.MediaImage: "image_blobs",
	models.MediaAudio: "audio_blobs",
}

func tableFor(kind models.MediaKind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return t, nil
}

// SQLiteStore keeps payloads in the video_blobs, image_blobs and audio_blobs
// tables.
type SQLiteStore struct {
	db dbx.DBTX
}

func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Put(ctx context.Context, kind models.MediaKind, id string, payload io.Reader, name string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if id == "" {
		return common.ErrorMissingID
	}

	data, err := io.ReadAll(payload)
	if err != nil {
		return fmt.Errorf("failed to read %s payload[%s]: %w", kind, id, err)
	}

	var label sql.NullString
	if kind == models.MediaAudio {
		label = sql.NullString{String: name, Valid: true}
	}

	query := `INSERT INTO ` + table + ` (id, payload, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, name = excluded.name`
	if _, err := s.db.ExecContext(ctx, query, id, data, label); err != nil {
		return fmt.Errorf("failed to put %s blob[%s]: %w", kind, id, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, kind models.MediaKind, id string) (models.BlobEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return models.BlobEntry{}, err
	}

	var (
		payload []byte
		name    sql.NullString
	)
	err = s.db.QueryRowContext(ctx, `SELECT payload, name FROM `+table+` WHERE id = ?`, id).Scan(&payload, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BlobEntry{}, common.ErrorNotFound
	}
	if err != nil {
		return models.BlobEntry{}, fmt.Errorf("failed to get %s blob[%s]: %w", kind, id, err)
	}

	if payload == nil {
		payload = []byte{}
	}
	return models.BlobEntry{ID: id, Payload: payload, Name: name.String}, nil
}

func (s *SQLiteStore) Open(ctx context.Context, kind models.MediaKind, id string) (io.ReadCloser, error) {
	e, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(e.Payload)), nil
}

func (s *SQLiteStore) Stat(ctx context.Context, kind models.MediaKind, id string) (models.BlobInfo, error) {
	table, err := tableFor(kind)
	if err != nil {
		return models.BlobInfo{}, err
	}

	var (
		size int64
		name sql.NullString
	)
	err = s.db.QueryRowContext(ctx, `SELECT length(payload), name FROM `+table+` WHERE id = ?`, id).Scan(&size, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BlobInfo{}, common.ErrorNotFound
	}
	if err != nil {
		return models.BlobInfo{}, fmt.Errorf("failed to stat %s blob[%s]: %w", kind, id, err)
	}
	return models.BlobInfo{ID: id, Name: name.String, Size: size}, nil
}

func (s *SQLiteStore) Rename(ctx context.Context, kind models.MediaKind, id string, name string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename %s blob[%s]: %w", kind, id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, kind models.MediaKind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s blob[%s]: %w", kind, id, err)
	}
	return nil
}

func (s *SQLiteStore) ListKeys(ctx context.Context, kind models.MediaKind) ([]string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s blobs: %w", kind, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s blob id: %w", kind, err)
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s blobs: %w", kind, err)
	}
	return keys, nil
}
