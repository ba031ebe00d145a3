package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clipnote/internal/client/events"
	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// SweepReport summarizes an orphan sweep.
type SweepReport struct {
	Deleted map[models.MediaKind][]string
	Kept    int
	Failed  int
}

func (r SweepReport) DeletedCount() int {
	n := 0
	for _, ids := range r.Deleted {
		n += len(ids)
	}
	return n
}

// SweepOrphans deletes every blob that no note references. Blobs referenced
// by the open draft are kept, and so are audio blobs stored under the id
// prefix of a known note, since editing that note would rediscover them.
func (s *NoteService) SweepOrphans(ctx context.Context) (SweepReport, error) {
	refs := map[models.MediaKind]map[string]struct{}{
		models.MediaVideo: {},
		models.MediaImage: {},
		models.MediaAudio: {},
	}
	var noteIDs []string
	for _, rec := range append(s.records.Clone().Active, s.records.Archived...) {
		noteIDs = append(noteIDs, rec.ID)
		for _, m := range rec.Media() {
			refs[m.Kind()][m.BlobID()] = struct{}{}
		}
	}
	if s.draft != nil {
		noteIDs = append(noteIDs, s.draft.ID())
		for kind, ids := range s.draft.references() {
			for id := range ids {
				refs[kind][id] = struct{}{}
			}
		}
	}

	report := SweepReport{Deleted: make(map[models.MediaKind][]string)}
	for _, kind := range models.MediaKinds {
		keys, err := s.store.ListKeys(ctx, kind)
		if err != nil {
			return report, fmt.Errorf("failed to sweep %s blobs: %w", kind, err)
		}
		for _, key := range keys {
			if _, ok := refs[kind][key]; ok || (kind == models.MediaAudio && ownedAudio(key, noteIDs)) {
				report.Kept++
				continue
			}
			if err := s.store.Delete(ctx, kind, key); err != nil {
				s.log.Warn(ctx, "failed to delete orphan", "kind", kind, "id", key, "error", err)
				report.Failed++
				continue
			}
			report.Deleted[kind] = append(report.Deleted[kind], key)
		}
	}

	s.log.Info(ctx, "orphan sweep finished", "deleted", report.DeletedCount(), "kept", report.Kept, "failed", report.Failed)
	if report.DeletedCount() > 0 {
		s.publish(ctx, events.BlobsSwept, "")
	}
	return report, nil
}

func ownedAudio(key string, noteIDs []string) bool {
	for _, id := range noteIDs {
		if strings.HasPrefix(key, models.AudioPrefix(id)) {
			return true
		}
	}
	return false
}
