package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRecord_UnmarshalCurrentFormat(t *testing.T) {
	in := `{"id":"note_1","content":"hi","tags":["a","b"],"pinned":true,
		"videos":[{"id":"video_1"}],"images":["img_1"],
		"audios":[{"id":"note_1_5","name":"memo"}],"date":1700000000000}`

	var rec NoteRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	assert.Equal(t, NoteRecord{
		ID:      "note_1",
		Content: "hi",
		Tags:    []string{"a", "b"},
		Pinned:  true,
		Videos:  []VideoRef{{ID: "video_1"}},
		Images:  []string{"img_1"},
		Audios:  []AudioRef{{ID: "note_1_5", Name: "memo"}},
		Date:    1700000000000,
	}, rec)
}

func TestNoteRecord_UnmarshalLegacyShapes(t *testing.T) {
	in := `{"content":"old",
		"videos":["video_a",{"id":"video_b","url":"blob:x"},{"url":"blob:no-id"},null],
		"imageURLs":[{"id":"img_a","url":"blob:y"},"img_b",{"url":"blob:z"}],
		"audios":[{"id":"","name":"ghost"},{"id":"n_1"}],
		"tags":["x","x",""]}`

	var rec NoteRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	assert.Empty(t, rec.ID)
	assert.Equal(t, []VideoRef{{ID: "video_a"}, {ID: "video_b"}}, rec.Videos)
	assert.Equal(t, []string{"img_a", "img_b"}, rec.Images)
	assert.Equal(t, []AudioRef{{ID: "n_1"}}, rec.Audios)
	assert.Equal(t, []string{"x"}, rec.Tags)
}

func TestNoteRecord_ImagesWinOverLegacyImageURLs(t *testing.T) {
	in := `{"id":"n","images":["new"],"imageURLs":[{"id":"old"}]}`

	var rec NoteRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))
	assert.Equal(t, []string{"new"}, rec.Images)
}

func TestNoteRecord_MarshalWritesEmptyArrays(t *testing.T) {
	b, err := json.Marshal(NoteRecord{ID: "n", Content: "c"})
	require.NoError(t, err)

	s := string(b)
	for _, want := range []string{`"tags":[]`, `"videos":[]`, `"images":[]`, `"audios":[]`} {
		assert.Contains(t, s, want)
	}
	assert.False(t, strings.Contains(s, "null"), s)
}

func TestNoteRecord_JSONRoundTrip(t *testing.T) {
	rec := NoteRecord{
		ID:      "note_9",
		Content: "body",
		Tags:    []string{"t1"},
		Videos:  []VideoRef{{ID: "v"}},
		Images:  []string{"i"},
		Audios:  []AudioRef{{ID: "note_9_1", Name: "n"}},
		Date:    42,
	}
	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var got NoteRecord
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, rec, got)
}

func TestNoteRecord_CloneIsDeep(t *testing.T) {
	rec := NoteRecord{Tags: []string{"a"}, Images: []string{"i"}}
	c := rec.Clone()
	c.Tags[0] = "changed"
	c.Images[0] = "changed"

	assert.Equal(t, "a", rec.Tags[0])
	assert.Equal(t, "i", rec.Images[0])
}

func TestNoteRecord_MediaOrder(t *testing.T) {
	rec := NoteRecord{
		Videos: []VideoRef{{ID: "v"}},
		Images: []string{"i"},
		Audios: []AudioRef{{ID: "a", Name: "n"}},
	}
	refs := rec.Media()
	require.Len(t, refs, 3)
	assert.Equal(t, MediaVideo, refs[0].Kind())
	assert.Equal(t, ImageRef{ID: "i"}, refs[1])
	assert.Equal(t, AudioRef{ID: "a", Name: "n"}, refs[2])
}

func TestUniqueTags(t *testing.T) {
	assert.Nil(t, UniqueTags(nil))
	assert.Equal(t, []string{"b", "a", "B"}, UniqueTags([]string{"b", "a", "b", "", "B"}))
}

func TestParseMediaKind(t *testing.T) {
	k, err := ParseMediaKind(" Audio ")
	require.NoError(t, err)
	assert.Equal(t, MediaAudio, k)

	_, err = ParseMediaKind("pdf")
	require.Error(t, err)
}

func TestIDs_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	note := NewNoteID(now)
	assert.True(t, strings.HasPrefix(note, "note_1700000000123_"), note)
	assert.Len(t, note, len("note_1700000000123_")+8)

	assert.True(t, strings.HasPrefix(NewVideoID(now), "video_1700000000123_"))
	assert.True(t, strings.HasPrefix(NewImageID(note, now), note+"-img-1700000000123_"))

	audio := NewAudioID(note, now)
	assert.True(t, strings.HasPrefix(audio, AudioPrefix(note)), audio)

	assert.NotEqual(t, NewNoteID(now), NewNoteID(now), "same millisecond must still differ")
}

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	if c.n > 1 {
		return errors.New("closed twice")
	}
	return nil
}

func TestHydratedNote_RecordDropsHandles(t *testing.T) {
	rec := NoteRecord{
		ID:      "note_1",
		Content: "c",
		Tags:    []string{"x"},
		Pinned:  true,
		Videos:  []VideoRef{{ID: "v1"}},
		Images:  []string{"i1", "i2"},
		Audios:  []AudioRef{{ID: "note_1_1", Name: "memo"}},
		Date:    7,
	}
	h := NewHydratedNote(rec, nil)
	h.Videos = []HydratedMedia{{Ref: VideoRef{ID: "v1"}, Handle: "blob:clipnote/1"}}
	h.Images = []HydratedMedia{{Ref: ImageRef{ID: "i1"}, Handle: "h2"}, {Ref: ImageRef{ID: "i2"}, Handle: "h3"}}
	h.Audios = []HydratedMedia{{Ref: AudioRef{ID: "note_1_1", Name: "memo"}, Handle: "h4"}}

	assert.Equal(t, rec, h.Record())
	assert.Len(t, h.Media(), 4)
}

func TestHydratedNote_ReleaseOnce(t *testing.T) {
	c := &countingCloser{}
	h := NewHydratedNote(NoteRecord{ID: "n"}, c)

	require.NoError(t, h.Release())
	require.NoError(t, h.Release())
	assert.Equal(t, 1, c.n)

	var nilNote *HydratedNote
	require.NoError(t, nilNote.Release())
}
