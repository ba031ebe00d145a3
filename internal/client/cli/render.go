package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// Output formats accepted by -o.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	pinnedColor = color.New(color.FgYellow, color.Bold)
	idColor     = color.New(color.FgCyan)
	tagColor    = color.New(color.FgGreen)
	faintColor  = color.New(color.Faint)
)

type mediaView struct {
	Kind   models.MediaKind `json:"kind" yaml:"kind"`
	ID     string           `json:"id" yaml:"id"`
	Name   string           `json:"name,omitempty" yaml:"name,omitempty"`
	Handle models.Handle    `json:"handle" yaml:"handle"`
}

type noteView struct {
	ID      string      `json:"id" yaml:"id"`
	Content string      `json:"content" yaml:"content"`
	Tags    []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Pinned  bool        `json:"pinned" yaml:"pinned"`
	Saved   time.Time   `json:"saved" yaml:"saved"`
	Media   []mediaView `json:"media,omitempty" yaml:"media,omitempty"`
}

func newNoteView(n *models.HydratedNote) noteView {
	v := noteView{
		ID:      n.ID,
		Content: n.Content,
		Tags:    n.Tags,
		Pinned:  n.Pinned,
		Saved:   time.UnixMilli(n.Date).UTC(),
	}
	for _, m := range n.Media() {
		mv := mediaView{Kind: m.Ref.Kind(), ID: m.Ref.BlobID(), Handle: m.Handle}
		if a, ok := m.Ref.(models.AudioRef); ok {
			mv.Name = a.Name
		}
		v.Media = append(v.Media, mv)
	}
	return v
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

// writeNotes renders notes in the given format. Text output is one summary
// line per note.
func writeNotes(w io.Writer, format string, notes []*models.HydratedNote) error {
	views := make([]noteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, newNoteView(n))
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case formatYAML:
		return encodeYAML(w, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(w, faintColor.Sprint("no notes"))
		return nil
	}
	for _, v := range views {
		fmt.Fprintln(w, summaryLine(v))
	}
	return nil
}

// writeNote renders one note with its full content and media list.
func writeNote(w io.Writer, format string, n *models.HydratedNote) error {
	v := newNoteView(n)
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		return encodeYAML(w, v)
	}

	fmt.Fprintln(w, summaryLine(v))
	if v.Content != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, v.Content)
	}
	if len(v.Media) > 0 {
		fmt.Fprintln(w)
	}
	for _, m := range v.Media {
		line := fmt.Sprintf("  %-5s %s", m.Kind, idColor.Sprint(m.ID))
		if m.Name != "" {
			line += " " + m.Name
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func summaryLine(v noteView) string {
	var b strings.Builder
	if v.Pinned {
		b.WriteString(pinnedColor.Sprint("* "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(idColor.Sprint(v.ID))
	b.WriteString("  ")
	b.WriteString(faintColor.Sprint(v.Saved.Format(time.DateTime)))
	if title := firstLine(v.Content); title != "" {
		b.WriteString("  ")
		b.WriteString(title)
	}
	for _, t := range v.Tags {
		b.WriteString(" ")
		b.WriteString(tagColor.Sprint("#" + t))
	}
	if counts := mediaCounts(v.Media); counts != "" {
		b.WriteString(" ")
		b.WriteString(faintColor.Sprint("(" + counts + ")"))
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 60
	if r := []rune(s); len(r) > limit {
		s = string(r[:limit]) + "..."
	}
	return s
}

func mediaCounts(media []mediaView) string {
	var parts []string
	for _, kind := range models.MediaKinds {
		n := 0
		for _, m := range media {
			if m.Kind == kind {
				n++
			}
		}
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	return strings.Join(parts, ", ")
}
