package services

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/clipnote/internal/client/handles"
	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// Draft is an uncommitted copy of a note under edit. Its media handles live
// in the draft's own scope and are released when the draft is saved or
// cancelled.
type Draft struct {
	// Note holds the edited fields and hydrated media. Callers read it;
	// mutations go through NoteService.
	Note *models.HydratedNote

	// Archived is the source collection the draft writes back to.
	Archived bool
	// IsNew is set for drafts opened by OpenForCreate.
	IsNew bool

	// index is the note's position when the draft was opened, -1 for new
	// notes. Collections may shift while the draft is open.
	index int
	scope *handles.Scope

	// staged holds video payloads written to the store only on save.
	staged map[string][]byte
	// uploaded lists blobs written eagerly during the session.
	uploaded map[string]models.MediaKind
	// removed lists blobs to delete once the record no longer references
	// them.
	removed []models.MediaRef
	renamed map[string]string
}

func newDraft(note *models.HydratedNote, scope *handles.Scope, archived, isNew bool, index int) *Draft {
	return &Draft{
		Note:     note,
		Archived: archived,
		IsNew:    isNew,
		index:    index,
		scope:    scope,
		staged:   make(map[string][]byte),
		uploaded: make(map[string]models.MediaKind),
		renamed:  make(map[string]string),
	}
}

func (d *Draft) ID() string { return d.Note.ID }

// Pending returns the blobs queued for deletion on save.
func (d *Draft) Pending() []models.MediaRef {
	return slices.Clone(d.removed)
}

func (d *Draft) addTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(d.Note.Tags, tag) {
		return
	}
	d.Note.Tags = append(d.Note.Tags, tag)
}

func (d *Draft) removeTag(tag string) {
	d.Note.Tags = slices.DeleteFunc(d.Note.Tags, func(t string) bool { return t == tag })
}

// writeBackIndex returns the position of the draft's note in recs, or -1
// when the note is not there yet.
func (d *Draft) writeBackIndex(recs []models.NoteRecord) int {
	if d.index >= 0 && d.index < len(recs) && recs[d.index].ID == d.ID() {
		return d.index
	}
	return models.IndexOf(recs, d.ID())
}

// list returns the media slice of the draft holding kind.
func (d *Draft) list(kind models.MediaKind) *[]models.HydratedMedia {
	switch kind {
	case models.MediaVideo:
		return &d.Note.Videos
	case models.MediaImage:
		return &d.Note.Images
	case models.MediaAudio:
		return &d.Note.Audios
	}
	return nil
}

// find locates media by blob id across all kinds.
func (d *Draft) find(id string) (models.HydratedMedia, int, bool) {
	for _, kind := range models.MediaKinds {
		items := *d.list(kind)
		if i := slices.IndexFunc(items, func(m models.HydratedMedia) bool { return m.Ref.BlobID() == id }); i >= 0 {
			return items[i], i, true
		}
	}
	return models.HydratedMedia{}, -1, false
}

// references reports every blob id the draft may still need, by kind.
func (d *Draft) references() map[models.MediaKind]map[string]struct{} {
	refs := map[models.MediaKind]map[string]struct{}{
		models.MediaVideo: {},
		models.MediaImage: {},
		models.MediaAudio: {},
	}
	for _, m := range d.Note.Media() {
		refs[m.Ref.Kind()][m.Ref.BlobID()] = struct{}{}
	}
	for id := range d.staged {
		refs[models.MediaVideo][id] = struct{}{}
	}
	for id, kind := range d.uploaded {
		refs[kind][id] = struct{}{}
	}
	return refs
}
