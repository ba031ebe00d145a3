package cli

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var savedRe = regexp.MustCompile(`saved (note_\S+)`)

func TestShell_DraftSession(t *testing.T) {
	dir := t.TempDir()
	song := writeTemp(t, "take.ogg", "ogg")
	img := writeTemp(t, "pic.png", "png")

	script := strings.Join([]string{
		"help",
		"new",
		"content",
		"shopping list",
		"bread",
		"",
		"tag food",
		"attach " + song,
		"attach " + img,
		"pin",
		"draft",
		"save",
		"bogus",
		"save",
		"exit",
	}, "\n") + "\n"

	out, err := runCLI(t, dir, script, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "ClipNote shell")
	assert.Contains(t, out, "new draft note_")
	assert.Contains(t, out, "attached audio note_")
	assert.Contains(t, out, "attached image note_")
	assert.Contains(t, out, `error: unknown command "bogus"`)
	assert.Contains(t, out, "error: no draft is open", "second save has no draft")
	assert.Contains(t, out, "Bye!")

	m := savedRe.FindStringSubmatch(out)
	require.Len(t, m, 2)
	id := m[1]

	v := showJSON(t, dir, id)
	assert.Equal(t, "shopping list\nbread", v.Content)
	assert.Equal(t, []string{"food"}, v.Tags)
	assert.True(t, v.Pinned)
	assert.Len(t, mediaOf(v, "audio"), 1)
	assert.Len(t, mediaOf(v, "image"), 1)
}

func TestShell_CancelDiscardsDraft(t *testing.T) {
	dir := t.TempDir()
	id := addNote(t, dir, "-m", "kept")

	script := strings.Join([]string{
		"edit " + id,
		"content",
		"overwritten",
		"",
		"new",
		"cancel",
		"draft",
		"list",
	}, "\n") + "\n"

	out, err := runCLI(t, dir, script, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "clipnote ("+id+")> ", "prompt shows the open draft")
	assert.Contains(t, out, "error: a draft is already open")
	assert.Contains(t, out, "no draft")
	assert.Contains(t, out, "kept")

	assert.Equal(t, "kept", showJSON(t, dir, id).Content)
}

func TestShell_ArchiveFlowAndFilters(t *testing.T) {
	dir := t.TempDir()
	a := addNote(t, dir, "-m", "alpha", "-t", "x")
	b := addNote(t, dir, "-m", "beta")

	script := strings.Join([]string{
		"filter x",
		"list",
		"filter",
		"search bet",
		"list",
		"search",
		"archive " + b,
		"list archived",
		"show " + b + " archived",
		"restore " + b,
		"archive " + a,
		"delete " + a,
		"gc",
		"show",
		"quit",
	}, "\n") + "\n"

	out, err := runCLI(t, dir, script, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "usage: show <id>")
	assert.Contains(t, out, "removed 0 blobs")
	assert.NotContains(t, out, "error: note")

	views := listJSON(t, dir)
	assert.Equal(t, []string{b}, viewIDs(views))
	assert.Empty(t, listJSON(t, dir, "--archived"))
}
