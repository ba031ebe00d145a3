// Package models defines the ClipNote client data model: persisted note
// records, media references, hydrated in-memory notes and blob entries.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MediaKind names one of the three blob stores.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// MediaKinds lists every kind in a stable order.
var MediaKinds = []MediaKind{MediaVideo, MediaImage, MediaAudio}

func (k MediaKind) Valid() bool {
	switch k {
	case MediaVideo, MediaImage, MediaAudio:
		return true
	}
	return false
}

// ParseMediaKind accepts "video", "image" or "audio" in any case.
func ParseMediaKind(s string) (MediaKind, error) {
	k := MediaKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown media kind %q", s)
	}
	return k, nil
}

// MediaRef is a reference from a note to one blob. It is implemented only by
// VideoRef, ImageRef and AudioRef; callers switch on Kind() or on the
// concrete type.
type MediaRef interface {
	Kind() MediaKind
	BlobID() string
	mediaRef()
}

// VideoRef points into the video store. Persisted as {"id": ...}.
type VideoRef struct {
	ID string `json:"id"`
}

func (VideoRef) Kind() MediaKind  { return MediaVideo }
func (r VideoRef) BlobID() string { return r.ID }
func (VideoRef) mediaRef()        {}

// UnmarshalJSON accepts both the object form and a bare string id written by
// older clients. A transient "url" field is ignored.
func (r *VideoRef) UnmarshalJSON(b []byte) error {
	id, err := decodeLooseID(b)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// ImageRef points into the image store. Records persist images as a plain
// list of ids, so ImageRef only exists in memory.
type ImageRef struct {
	ID string
}

func (ImageRef) Kind() MediaKind  { return MediaImage }
func (r ImageRef) BlobID() string { return r.ID }
func (ImageRef) mediaRef()        {}

// AudioRef points into the audio store. Name is a user label independent of
// the blob.
type AudioRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (AudioRef) Kind() MediaKind  { return MediaAudio }
func (r AudioRef) BlobID() string { return r.ID }
func (AudioRef) mediaRef()        {}

func (r *AudioRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.ID, r.Name = s, ""
		return nil
	}
	var obj struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.ID, r.Name = obj.ID, obj.Name
	return nil
}

// decodeLooseID reads either "id" or {"id": "..."}; null yields "".
func decodeLooseID(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", err
	}
	return obj.ID, nil
}
