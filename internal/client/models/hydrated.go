package models

import (
	"io"
	"slices"
)

// Handle is an ephemeral, revocable access handle for one blob, the
// equivalent of a short-lived object URL. Handles are never persisted.
type Handle string

// HydratedMedia pairs a media reference with the handle that renders it.
// Handle is empty for a reference that could not be resolved while opening
// a draft; the reference is still written back on save.
type HydratedMedia struct {
	Ref    MediaRef
	Handle Handle
}

// HydratedNote is a note held in memory with its media resolved to handles.
// It owns the handles it carries; Release must be called when the note is
// discarded, replaced or reloaded.
type HydratedNote struct {
	ID      string
	Content string
	Tags    []string
	Pinned  bool
	Date    int64

	Videos []HydratedMedia
	Images []HydratedMedia
	Audios []HydratedMedia

	scope io.Closer
}

// NewHydratedNote copies the text fields of rec. Media lists are filled by
// the caller; scope owns every handle placed in them.
func NewHydratedNote(rec NoteRecord, scope io.Closer) *HydratedNote {
	return &HydratedNote{
		ID:      rec.ID,
		Content: rec.Content,
		Tags:    slices.Clone(rec.Tags),
		Pinned:  rec.Pinned,
		Date:    rec.Date,
		scope:   scope,
	}
}

// Record re-derives the persisted form, dropping handles.
func (h *HydratedNote) Record() NoteRecord {
	rec := NoteRecord{
		ID:      h.ID,
		Content: h.Content,
		Tags:    slices.Clone(h.Tags),
		Pinned:  h.Pinned,
		Date:    h.Date,
	}
	for _, m := range h.Videos {
		rec.Videos = append(rec.Videos, VideoRef{ID: m.Ref.BlobID()})
	}
	for _, m := range h.Images {
		rec.Images = append(rec.Images, m.Ref.BlobID())
	}
	for _, m := range h.Audios {
		if a, ok := m.Ref.(AudioRef); ok {
			rec.Audios = append(rec.Audios, a)
		}
	}
	return rec
}

// Media returns every hydrated attachment: videos, images, then audio.
func (h *HydratedNote) Media() []HydratedMedia {
	out := make([]HydratedMedia, 0, len(h.Videos)+len(h.Images)+len(h.Audios))
	out = append(out, h.Videos...)
	out = append(out, h.Images...)
	return append(out, h.Audios...)
}

// Release revokes every handle owned by the note. It is safe to call more
// than once.
func (h *HydratedNote) Release() error {
	if h == nil || h.scope == nil {
		return nil
	}
	s := h.scope
	h.scope = nil
	return s.Close()
}
