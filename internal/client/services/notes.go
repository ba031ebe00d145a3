// Package services holds the note lifecycle controller.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipnote/internal/client/events"
	"github.com/dmitrijs2005/clipnote/internal/client/handles"
	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/client/normalize"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/clipnote/internal/common"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

// NoteService owns the loaded notes and mediates every mutation. It is not
// safe for concurrent use: callers issue one operation at a time.
//
// The persisted collections and the hydrated views are kept index-aligned:
// active[i] is the hydration of records.Active[i].
type NoteService struct {
	repo     notes.Repository
	store    blobs.Store
	handles  *handles.Registry
	hydrator *normalize.Hydrator
	events   events.Publisher
	log      logging.Logger
	now      func() time.Time

	records  models.Collections
	active   []*models.HydratedNote
	archived []*models.HydratedNote
	filter   Filter
	draft    *Draft
}

type Option func(*NoteService)

func WithEvents(p events.Publisher) Option {
	return func(s *NoteService) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *NoteService) { s.now = now }
}

func WithHydrationWorkers(n int) Option {
	return func(s *NoteService) {
		s.hydrator = normalize.NewHydrator(s.store, s.handles, s.log, n)
	}
}

func NewNoteService(repo notes.Repository, store blobs.Store, log logging.Logger, opts ...Option) *NoteService {
	if log == nil {
		log = logging.Nop()
	}
	reg := handles.NewRegistry(store)
	s := &NoteService{
		repo:     repo,
		store:    store,
		handles:  reg,
		hydrator: normalize.NewHydrator(store, reg, log, 0),
		events:   events.Nop{},
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handles exposes the registry that resolves handles of listed notes.
func (s *NoteService) Handles() *handles.Registry { return s.handles }

// Load reads both collections and hydrates them, replacing any previously
// loaded view.
func (s *NoteService) Load(ctx context.Context) error {
	c, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load notes", "error", err)
		return fmt.Errorf("failed to load notes: %w", err)
	}

	active, err := s.hydrator.HydrateAll(ctx, c.Active)
	if err != nil {
		return err
	}
	archived, err := s.hydrator.HydrateAll(ctx, c.Archived)
	if err != nil {
		releaseAll(active)
		return err
	}

	releaseAll(s.active)
	releaseAll(s.archived)
	s.records, s.active, s.archived = c, active, archived
	s.log.Debug(ctx, "notes loaded", "active", len(active), "archived", len(archived))
	return nil
}

// Close releases every handle held by the service.
func (s *NoteService) Close() {
	s.Cancel()
	releaseAll(s.active)
	releaseAll(s.archived)
	s.active, s.archived = nil, nil
}

func releaseAll(notes []*models.HydratedNote) {
	for _, n := range notes {
		_ = n.Release()
	}
}

// Records returns a copy of the persisted collections as last loaded or
// written.
func (s *NoteService) Records() models.Collections { return s.records.Clone() }

func (s *NoteService) Filter() Filter { return s.filter }

// SetTagFilter restricts listings to notes carrying tag; "" clears it.
func (s *NoteService) SetTagFilter(tag string) { s.filter.Tag = tag }

func (s *NoteService) SetSearchTerm(term string) { s.filter.Search = term }

func (s *NoteService) ListActive() []*models.HydratedNote { return Apply(s.active, s.filter) }

func (s *NoteService) ListArchived() []*models.HydratedNote { return Apply(s.archived, s.filter) }

// Partition splits the filtered active notes into pinned and others.
func (s *NoteService) Partition() (pinned, others []*models.HydratedNote) {
	return Split(s.ListActive())
}

// Note returns the hydrated view of one persisted note, ignoring the
// current filter.
func (s *NoteService) Note(id string, archived bool) (*models.HydratedNote, error) {
	idx := models.IndexOf(*s.collection(&s.records, archived), id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return (*s.view(archived))[idx], nil
}

// Draft returns the open draft or nil.
func (s *NoteService) Draft() *Draft { return s.draft }

// OpenForCreate opens an empty draft with a freshly allocated note id.
func (s *NoteService) OpenForCreate() (string, error) {
	if s.draft != nil {
		return "", ErrDraftOpen
	}
	scope := s.handles.NewScope()
	rec := models.NoteRecord{ID: models.NewNoteID(s.now())}
	s.draft = newDraft(models.NewHydratedNote(rec, scope), scope, false, true, -1)
	return rec.ID, nil
}

// OpenForEdit copies a persisted note into a draft and re-hydrates its
// media, discovering unlisted audio by id prefix.
func (s *NoteService) OpenForEdit(ctx context.Context, id string, archived bool) (*Draft, error) {
	if s.draft != nil {
		return nil, ErrDraftOpen
	}
	recs := s.collection(&s.records, archived)
	idx := models.IndexOf(*recs, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}

	scope := s.handles.NewScope()
	note := s.hydrator.HydrateForEdit(ctx, (*recs)[idx], scope)
	s.draft = newDraft(note, scope, archived, false, idx)
	return s.draft, nil
}

// Cancel discards the open draft without touching either store.
func (s *NoteService) Cancel() {
	if s.draft == nil {
		return
	}
	_ = s.draft.Note.Release()
	s.draft = nil
}

func (s *NoteService) SetContent(content string) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	s.draft.Note.Content = content
	return nil
}

func (s *NoteService) AddTag(tag string) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	s.draft.addTag(tag)
	return nil
}

func (s *NoteService) RemoveTag(tag string) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	s.draft.removeTag(tag)
	return nil
}

// TogglePin flips the pin flag of the draft. Archived drafts cannot be
// pinned.
func (s *NoteService) TogglePin() error {
	if s.draft == nil {
		return ErrNoDraft
	}
	if s.draft.Archived {
		return ErrArchivedPin
	}
	s.draft.Note.Pinned = !s.draft.Note.Pinned
	return nil
}

// UploadMedia attaches a file to the draft. Images and audio are written to
// the blob store immediately; video is staged in memory until Save.
func (s *NoteService) UploadMedia(ctx context.Context, up models.Upload) (models.MediaRef, error) {
	d := s.draft
	if d == nil {
		return nil, ErrNoDraft
	}
	kind, err := Classify(up.ContentType, up.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (%s)", err, up.Name, up.ContentType)
	}

	if up.Data == nil {
		return nil, fmt.Errorf("%w: %q", ErrEmptyUpload, up.Name)
	}
	data, err := io.ReadAll(up.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", up.Name, err)
	}

	now := s.now()
	var (
		ref    models.MediaRef
		handle models.Handle
	)
	switch kind {
	case models.MediaVideo:
		ref = models.VideoRef{ID: models.NewVideoID(now)}
		d.staged[ref.BlobID()] = data
		handle, err = d.scope.AcquireStaged(ref, data)
	case models.MediaImage:
		ref = models.ImageRef{ID: models.NewImageID(d.ID(), now)}
		if err := s.store.Put(ctx, kind, ref.BlobID(), bytes.NewReader(data), ""); err != nil {
			s.log.Error(ctx, "failed to store image", "note_id", d.ID(), "error", err)
			return nil, err
		}
		d.uploaded[ref.BlobID()] = kind
		handle, err = d.scope.Acquire(ref)
	case models.MediaAudio:
		ref = models.AudioRef{ID: models.NewAudioID(d.ID(), now), Name: up.Name}
		if err := s.store.Put(ctx, kind, ref.BlobID(), bytes.NewReader(data), up.Name); err != nil {
			s.log.Error(ctx, "failed to store audio", "note_id", d.ID(), "error", err)
			return nil, err
		}
		d.uploaded[ref.BlobID()] = kind
		handle, err = d.scope.Acquire(ref)
	}
	if err != nil {
		return nil, err
	}

	list := d.list(kind)
	*list = append(*list, models.HydratedMedia{Ref: ref, Handle: handle})
	s.log.Debug(ctx, "media attached", "note_id", d.ID(), "kind", kind, "id", ref.BlobID())
	return ref, nil
}

// RemoveMedia detaches media from the draft and releases its handle. Video
// and image blobs are deleted on the next successful Save; audio blobs are
// deleted immediately.
func (s *NoteService) RemoveMedia(ctx context.Context, id string) error {
	d := s.draft
	if d == nil {
		return ErrNoDraft
	}
	m, idx, ok := d.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}

	switch ref := m.Ref.(type) {
	case models.VideoRef:
		if _, staged := d.staged[ref.ID]; staged {
			delete(d.staged, ref.ID)
		} else {
			d.removed = append(d.removed, ref)
		}
	case models.ImageRef:
		d.removed = append(d.removed, ref)
	case models.AudioRef:
		if err := s.store.Delete(ctx, models.MediaAudio, ref.ID); err != nil {
			s.log.Error(ctx, "failed to delete audio", "note_id", d.ID(), "id", ref.ID, "error", err)
			return err
		}
		delete(d.renamed, ref.ID)
		delete(d.uploaded, ref.ID)
	}

	list := d.list(m.Ref.Kind())
	*list = slices.Delete(*list, idx, idx+1)
	if m.Handle == "" {
		return nil
	}
	if err := d.scope.Release(m.Handle); err != nil {
		s.log.Warn(ctx, "failed to release handle", "handle", m.Handle, "error", err)
	}
	return nil
}

// RenameAudio changes the display name of an audio item. The new name is
// written to the blob store on Save.
func (s *NoteService) RenameAudio(id, name string) error {
	d := s.draft
	if d == nil {
		return ErrNoDraft
	}
	i := slices.IndexFunc(d.Note.Audios, func(m models.HydratedMedia) bool { return m.Ref.BlobID() == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}
	d.Note.Audios[i].Ref = models.AudioRef{ID: id, Name: name}
	d.renamed[id] = name
	return nil
}

// Save commits the draft. Staged videos and audio renames are written
// first, then both collections are persisted, and only then are blobs
// removed during the session deleted. If any write before the record
// fails, nothing is persisted and the draft stays open.
func (s *NoteService) Save(ctx context.Context) (models.NoteRecord, error) {
	d := s.draft
	if d == nil {
		return models.NoteRecord{}, ErrNoDraft
	}
	log := s.log.With("note_id", d.ID())

	rec := d.Note.Record()
	rec.Tags = models.UniqueTags(rec.Tags)
	rec.Date = s.now().UnixMilli()
	if d.Archived {
		rec.Pinned = false
	}

	for _, v := range rec.Videos {
		payload, ok := d.staged[v.ID]
		if !ok {
			continue
		}
		if err := s.store.Put(ctx, models.MediaVideo, v.ID, bytes.NewReader(payload), ""); err != nil {
			log.Error(ctx, "failed to store video", "id", v.ID, "error", err)
			return models.NoteRecord{}, fmt.Errorf("failed to save note: %w", err)
		}
	}
	for _, a := range rec.Audios {
		name, ok := d.renamed[a.ID]
		if !ok {
			continue
		}
		if err := s.store.Rename(ctx, models.MediaAudio, a.ID, name); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				log.Warn(ctx, "renamed audio is missing from store", "id", a.ID)
				continue
			}
			log.Error(ctx, "failed to rename audio", "id", a.ID, "error", err)
			return models.NoteRecord{}, fmt.Errorf("failed to save note: %w", err)
		}
	}

	next := s.records.Clone()
	target := s.collection(&next, d.Archived)
	idx := d.writeBackIndex(*target)
	if idx >= 0 {
		(*target)[idx] = rec
	} else {
		*target = append(*target, rec)
	}

	if err := s.repo.Persist(ctx, next); err != nil {
		log.Error(ctx, "failed to persist notes", "error", err)
		return models.NoteRecord{}, fmt.Errorf("failed to save note: %w", err)
	}

	for _, ref := range d.removed {
		if slices.ContainsFunc(rec.Media(), func(m models.MediaRef) bool { return m == ref }) {
			continue
		}
		if err := s.store.Delete(ctx, ref.Kind(), ref.BlobID()); err != nil {
			log.Warn(ctx, "failed to delete removed media", "kind", ref.Kind(), "id", ref.BlobID(), "error", err)
		}
	}

	s.records = next
	fresh := s.hydrator.Hydrate(ctx, rec)
	view := s.view(d.Archived)
	if idx >= 0 {
		_ = (*view)[idx].Release()
		(*view)[idx] = fresh
	} else {
		*view = append(*view, fresh)
	}

	_ = d.Note.Release()
	s.draft = nil
	log.Info(ctx, "note saved", "new", d.IsNew)
	s.publish(ctx, events.NoteSaved, rec.ID)
	return rec.Clone(), nil
}

// Archive moves an active note to the archive and unpins it. A blank id is
// ignored.
func (s *NoteService) Archive(ctx context.Context, id string) error {
	if id == "" {
		s.log.Warn(ctx, "archive requested without a note id")
		return nil
	}
	if err := s.checkIdle(id); err != nil {
		return err
	}
	idx := models.IndexOf(s.records.Active, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}

	next := s.records.Clone()
	rec := next.Active[idx]
	rec.Pinned = false
	next.Active = slices.Delete(next.Active, idx, idx+1)
	next.Archived = append(next.Archived, rec)

	if err := s.repo.Persist(ctx, next); err != nil {
		s.log.Error(ctx, "failed to archive note", "note_id", id, "error", err)
		return fmt.Errorf("failed to archive note: %w", err)
	}

	s.records = next
	note := s.active[idx]
	note.Pinned = false
	s.active = slices.Delete(s.active, idx, idx+1)
	s.archived = append(s.archived, note)

	s.log.Info(ctx, "note archived", "note_id", id)
	s.publish(ctx, events.NoteArchived, id)
	return nil
}

// Restore moves an archived note back to the active collection and
// re-hydrates its media. The note stays unpinned.
func (s *NoteService) Restore(ctx context.Context, id string) error {
	if err := s.checkIdle(id); err != nil {
		return err
	}
	idx := models.IndexOf(s.records.Archived, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}

	next := s.records.Clone()
	rec := next.Archived[idx]
	rec.Pinned = false
	next.Archived = slices.Delete(next.Archived, idx, idx+1)
	next.Active = append(next.Active, rec)

	if err := s.repo.Persist(ctx, next); err != nil {
		s.log.Error(ctx, "failed to restore note", "note_id", id, "error", err)
		return fmt.Errorf("failed to restore note: %w", err)
	}

	s.records = next
	_ = s.archived[idx].Release()
	s.archived = slices.Delete(s.archived, idx, idx+1)
	s.active = append(s.active, s.hydrator.Hydrate(ctx, rec))

	s.log.Info(ctx, "note restored", "note_id", id)
	s.publish(ctx, events.NoteRestored, id)
	return nil
}

// PermanentlyDelete removes an archived note and then purges every blob it
// referenced, including audio stored under its id prefix.
func (s *NoteService) PermanentlyDelete(ctx context.Context, id string) error {
	if err := s.checkIdle(id); err != nil {
		return err
	}
	idx := models.IndexOf(s.records.Archived, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}

	next := s.records.Clone()
	rec := next.Archived[idx]
	next.Archived = slices.Delete(next.Archived, idx, idx+1)

	if err := s.repo.Persist(ctx, next); err != nil {
		s.log.Error(ctx, "failed to delete note", "note_id", id, "error", err)
		return fmt.Errorf("failed to delete note: %w", err)
	}

	s.records = next
	_ = s.archived[idx].Release()
	s.archived = slices.Delete(s.archived, idx, idx+1)

	s.purge(ctx, rec)
	s.log.Info(ctx, "note deleted", "note_id", id)
	s.publish(ctx, events.NoteDeleted, id)
	return nil
}

// purge deletes the blobs of a removed note. Failures are logged.
func (s *NoteService) purge(ctx context.Context, rec models.NoteRecord) {
	refs := rec.Media()

	keys, err := s.store.ListKeys(ctx, models.MediaAudio)
	if err != nil {
		s.log.Warn(ctx, "failed to enumerate audio for purge", "note_id", rec.ID, "error", err)
	}
	prefix := models.AudioPrefix(rec.ID)
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			refs = append(refs, models.AudioRef{ID: key})
		}
	}

	for _, ref := range refs {
		if err := s.store.Delete(ctx, ref.Kind(), ref.BlobID()); err != nil {
			s.log.Warn(ctx, "failed to purge media", "note_id", rec.ID, "kind", ref.Kind(), "id", ref.BlobID(), "error", err)
		}
	}
}

func (s *NoteService) checkIdle(id string) error {
	if s.draft != nil && s.draft.ID() == id {
		return fmt.Errorf("%w: %s", ErrNoteBusy, id)
	}
	return nil
}

func (s *NoteService) collection(c *models.Collections, archived bool) *[]models.NoteRecord {
	if archived {
		return &c.Archived
	}
	return &c.Active
}

func (s *NoteService) view(archived bool) *[]*models.HydratedNote {
	if archived {
		return &s.archived
	}
	return &s.active
}

func (s *NoteService) publish(ctx context.Context, typ, noteID string) {
	e := events.Event{Type: typ, NoteID: noteID, At: s.now().UTC()}
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn(ctx, "failed to publish event", "type", typ, "error", err)
	}
}
