package models

import (
	"encoding/json"
	"slices"
)

// NoteRecord is the persisted form of one note. Field names match the
// serialized arrays kept in the settings store.
type NoteRecord struct {
	ID      string     `json:"id,omitempty"`
	Content string     `json:"content"`
	Tags    []string   `json:"tags"`
	Pinned  bool       `json:"pinned"`
	Videos  []VideoRef `json:"videos"`
	Images  []string   `json:"images"`
	Audios  []AudioRef `json:"audios"`
	// Date is the last-saved time in Unix milliseconds.
	Date int64 `json:"date"`
}

type noteRecordJSON NoteRecord

// UnmarshalJSON decodes a record and drops attachment references without an
// id. Records written by older clients may keep image ids only in a legacy
// "imageURLs" array of {id,url} objects.
func (n *NoteRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		noteRecordJSON
		Images    []json.RawMessage `json:"images"`
		ImageURLs []json.RawMessage `json:"imageURLs"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = NoteRecord(raw.noteRecordJSON)

	src := raw.Images
	if len(src) == 0 {
		src = raw.ImageURLs
	}
	n.Images = nil
	for _, item := range src {
		id, err := decodeLooseID(item)
		if err != nil || id == "" {
			continue
		}
		n.Images = append(n.Images, id)
	}
	n.Videos = nilIfEmpty(slices.DeleteFunc(n.Videos, func(v VideoRef) bool { return v.ID == "" }))
	n.Audios = nilIfEmpty(slices.DeleteFunc(n.Audios, func(a AudioRef) bool { return a.ID == "" }))
	n.Tags = UniqueTags(n.Tags)
	return nil
}

// nilIfEmpty normalizes an empty list to nil, the form records built in
// memory use.
func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// MarshalJSON writes empty arrays instead of null.
func (n NoteRecord) MarshalJSON() ([]byte, error) {
	out := noteRecordJSON(n.Clone())
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Videos == nil {
		out.Videos = []VideoRef{}
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	if out.Audios == nil {
		out.Audios = []AudioRef{}
	}
	return json.Marshal(out)
}

// Clone returns a deep copy.
func (n NoteRecord) Clone() NoteRecord {
	n.Tags = slices.Clone(n.Tags)
	n.Videos = slices.Clone(n.Videos)
	n.Images = slices.Clone(n.Images)
	n.Audios = slices.Clone(n.Audios)
	return n
}

// Media returns every reference of the record, videos first, then images,
// then audio.
func (n NoteRecord) Media() []MediaRef {
	refs := make([]MediaRef, 0, len(n.Videos)+len(n.Images)+len(n.Audios))
	for _, v := range n.Videos {
		refs = append(refs, v)
	}
	for _, id := range n.Images {
		refs = append(refs, ImageRef{ID: id})
	}
	for _, a := range n.Audios {
		refs = append(refs, a)
	}
	return refs
}

// UniqueTags drops empty and repeated tags, keeping first occurrence order.
func UniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return nilIfEmpty(out)
}

// Collections holds both persisted note sequences. A note id appears in at
// most one of them.
type Collections struct {
	Active   []NoteRecord
	Archived []NoteRecord
}

// Clone returns a deep copy of both sequences.
func (c Collections) Clone() Collections {
	out := Collections{
		Active:   make([]NoteRecord, len(c.Active)),
		Archived: make([]NoteRecord, len(c.Archived)),
	}
	for i, r := range c.Active {
		out.Active[i] = r.Clone()
	}
	for i, r := range c.Archived {
		out.Archived[i] = r.Clone()
	}
	return out
}

// IndexOf returns the position of id in recs or -1.
func IndexOf(recs []NoteRecord, id string) int {
	return slices.IndexFunc(recs, func(r NoteRecord) bool { return r.ID == id })
}
