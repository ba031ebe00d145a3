package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipnote/internal/client/migrations"
	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/clipnote/internal/dbx"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

var errInjected = errors.New("injected failure")

// flakyRepo fails Persist while fail is set.
type flakyRepo struct {
	notes.Repository
	fail bool
}

func (r *flakyRepo) Persist(ctx context.Context, c models.Collections) error {
	if r.fail {
		return errInjected
	}
	return r.Repository.Persist(ctx, c)
}

// flakyStatStore fails Stat while fail is set.
type flakyStatStore struct {
	blobs.Store
	fail bool
}

func (s *flakyStatStore) Stat(ctx context.Context, kind models.MediaKind, id string) (models.BlobInfo, error) {
	if s.fail {
		return models.BlobInfo{}, errInjected
	}
	return s.Store.Stat(ctx, kind, id)
}

type testEnv struct {
	db    *sql.DB
	repo  *flakyRepo
	store *blobs.SQLiteStore
	svc   *NoteService
	now   time.Time
}

func newEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	db, err := dbx.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))

	e := &testEnv{
		db:    db,
		repo:  &flakyRepo{Repository: notes.NewSQLiteRepository(db, logging.Nop())},
		store: blobs.NewSQLiteStore(db),
		now:   time.UnixMilli(1700000000000),
	}
	opts = append([]Option{WithClock(func() time.Time { return e.now })}, opts...)
	e.svc = NewNoteService(e.repo, e.store, logging.Nop(), opts...)
	t.Cleanup(e.svc.Close)
	require.NoError(t, e.svc.Load(context.Background()))
	return e
}

// reload builds a second service over the same database, as after a
// restart.
func (e *testEnv) reload(t *testing.T) *NoteService {
	t.Helper()
	return e.reloadWith(t, e.store)
}

// reloadWith is reload over a different view of the blob store.
func (e *testEnv) reloadWith(t *testing.T, store blobs.Store) *NoteService {
	t.Helper()
	svc := NewNoteService(notes.NewSQLiteRepository(e.db, logging.Nop()), store, logging.Nop())
	t.Cleanup(svc.Close)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func (e *testEnv) persisted(t *testing.T) models.Collections {
	t.Helper()
	c, err := notes.NewSQLiteRepository(e.db, logging.Nop()).Load(context.Background())
	require.NoError(t, err)
	return c
}

func (e *testEnv) blobExists(t *testing.T, kind models.MediaKind, id string) bool {
	t.Helper()
	_, err := e.store.Stat(context.Background(), kind, id)
	return err == nil
}

func upload(name, contentType, body string) models.Upload {
	return models.Upload{Name: name, ContentType: contentType, Data: strings.NewReader(body)}
}

// createNote saves a new note with the given content, tags and uploads.
func (e *testEnv) createNote(t *testing.T, content string, tags []string, files ...models.Upload) models.NoteRecord {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.OpenForCreate()
	require.NoError(t, err)
	require.NoError(t, e.svc.SetContent(content))
	for _, tag := range tags {
		require.NoError(t, e.svc.AddTag(tag))
	}
	for _, f := range files {
		_, err := e.svc.UploadMedia(ctx, f)
		require.NoError(t, err)
	}
	rec, err := e.svc.Save(ctx)
	require.NoError(t, err)
	return rec
}

func ids(notes []*models.HydratedNote) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }
