package services

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// Filter selects notes by search term and tag. The zero value matches
// everything.
type Filter struct {
	// Search is matched case-insensitively as a substring of the content
	// or of any tag.
	Search string
	// Tag, when set, must be one of the note's tags exactly.
	Tag string
}

func (f Filter) Match(n *models.HydratedNote) bool {
	if f.Tag != "" && !slices.Contains(n.Tags, f.Tag) {
		return false
	}
	term := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(n.Content), term) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// Apply returns the notes matching f, in order.
func Apply(notes []*models.HydratedNote, f Filter) []*models.HydratedNote {
	out := make([]*models.HydratedNote, 0, len(notes))
	for _, n := range notes {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Split partitions notes into pinned and others, keeping order.
func Split(notes []*models.HydratedNote) (pinned, others []*models.HydratedNote) {
	for _, n := range notes {
		if n.Pinned {
			pinned = append(pinned, n)
		} else {
			others = append(others, n)
		}
	}
	return pinned, others
}
