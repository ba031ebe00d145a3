package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// randSuffix returns 8 hex characters of a random uuid.
func randSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewNoteID returns "note_<unixms>_<rand>".
func NewNoteID(now time.Time) string {
	return fmt.Sprintf("note_%d_%s", now.UnixMilli(), randSuffix())
}

// NewVideoID returns "video_<unixms>_<rand>".
func NewVideoID(now time.Time) string {
	return fmt.Sprintf("video_%d_%s", now.UnixMilli(), randSuffix())
}

// NewImageID returns "<noteID>-img-<unixms>_<rand>".
func NewImageID(noteID string, now time.Time) string {
	return fmt.Sprintf("%s-img-%d_%s", noteID, now.UnixMilli(), randSuffix())
}

// NewAudioID returns "<noteID>_<unixms>_<rand>". Audio ids are namespaced by
// note so they can be discovered by key enumeration.
func NewAudioID(noteID string, now time.Time) string {
	return fmt.Sprintf("%s%d_%s", AudioPrefix(noteID), now.UnixMilli(), randSuffix())
}

// AudioPrefix is the key prefix shared by all audio blobs of a note.
func AudioPrefix(noteID string) string {
	return noteID + "_"
}
