// Package normalize reconciles persisted note records with the blob store.
//
// Hydration resolves every media reference of a record to an ephemeral
// handle. References whose blob is missing or unreadable are dropped from
// the hydrated note; they never fail the note. Hydration only reads the
// store.
//
// Drafts are written back from their hydrated form, so edit hydration keeps
// references that failed for any reason other than a missing blob, without
// a handle.
package normalize

import (
	"context"
	"errors"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/clipnote/internal/client/handles"
	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/clipnote/internal/common"
	"github.com/dmitrijs2005/clipnote/internal/logging"
)

const DefaultWorkers = 4

type Hydrator struct {
	store   blobs.Store
	handles *handles.Registry
	log     logging.Logger
	workers int
}

func NewHydrator(store blobs.Store, reg *handles.Registry, log logging.Logger, workers int) *Hydrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Hydrator{store: store, handles: reg, log: log, workers: workers}
}

// Hydrate resolves the media listed in rec. The returned note owns a fresh
// scope of handles.
func (h *Hydrator) Hydrate(ctx context.Context, rec models.NoteRecord) *models.HydratedNote {
	return h.hydrate(ctx, rec, h.handles.NewScope(), false)
}

// HydrateForEdit resolves rec like Hydrate and also discovers audio blobs
// stored under the note's id prefix that the record does not list.
// Handles are acquired into scope, which the caller owns.
func (h *Hydrator) HydrateForEdit(ctx context.Context, rec models.NoteRecord, scope *handles.Scope) *models.HydratedNote {
	return h.hydrate(ctx, rec, scope, true)
}

// HydrateAll hydrates recs concurrently and returns the notes in input
// order. On cancellation every note hydrated so far is released.
func (h *Hydrator) HydrateAll(ctx context.Context, recs []models.NoteRecord) ([]*models.HydratedNote, error) {
	out := make([]*models.HydratedNote, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, rec := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = h.Hydrate(gctx, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, n := range out {
			_ = n.Release()
		}
		return nil, err
	}
	return out, nil
}

func (h *Hydrator) hydrate(ctx context.Context, rec models.NoteRecord, scope *handles.Scope, discover bool) *models.HydratedNote {
	note := models.NewHydratedNote(rec, scope)
	log := h.log.With("note_id", rec.ID)

	add := func(list *[]models.HydratedMedia, ref models.MediaRef) {
		m, err := h.resolve(ctx, scope, ref)
		switch {
		case err == nil:
			*list = append(*list, m)
		case errors.Is(err, common.ErrorMissingID):
			log.Warn(ctx, "dropping media without id", "kind", ref.Kind())
		case errors.Is(err, common.ErrorNotFound):
			log.Debug(ctx, "media missing from store", "kind", ref.Kind(), "id", ref.BlobID())
		case discover:
			log.Warn(ctx, "keeping unresolved media", "kind", ref.Kind(), "id", ref.BlobID(), "error", err)
			*list = append(*list, models.HydratedMedia{Ref: ref})
		default:
			log.Warn(ctx, "failed to resolve media", "kind", ref.Kind(), "id", ref.BlobID(), "error", err)
		}
	}

	for _, v := range rec.Videos {
		add(&note.Videos, v)
	}
	for _, id := range rec.Images {
		add(&note.Images, models.ImageRef{ID: id})
	}
	for _, a := range rec.Audios {
		add(&note.Audios, a)
	}

	if discover && rec.ID != "" {
		note.Audios = append(note.Audios, h.discoverAudio(ctx, log, scope, rec)...)
	}
	return note
}

func (h *Hydrator) resolve(ctx context.Context, scope *handles.Scope, ref models.MediaRef) (models.HydratedMedia, error) {
	if ref.BlobID() == "" {
		return models.HydratedMedia{}, common.ErrorMissingID
	}
	if _, err := h.store.Stat(ctx, ref.Kind(), ref.BlobID()); err != nil {
		return models.HydratedMedia{}, err
	}
	handle, err := scope.Acquire(ref)
	if err != nil {
		return models.HydratedMedia{}, err
	}
	return models.HydratedMedia{Ref: ref, Handle: handle}, nil
}

// discoverAudio returns audio blobs under the note's prefix that rec does
// not list, in key order.
func (h *Hydrator) discoverAudio(ctx context.Context, log logging.Logger, scope *handles.Scope, rec models.NoteRecord) []models.HydratedMedia {
	keys, err := h.store.ListKeys(ctx, models.MediaAudio)
	if err != nil {
		log.Warn(ctx, "failed to enumerate audio", "error", err)
		return nil
	}

	prefix := models.AudioPrefix(rec.ID)
	known := func(id string) bool {
		return slices.ContainsFunc(rec.Audios, func(a models.AudioRef) bool { return a.ID == id })
	}

	var found []models.HydratedMedia
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) || known(key) {
			continue
		}
		info, err := h.store.Stat(ctx, models.MediaAudio, key)
		if err != nil {
			log.Warn(ctx, "failed to stat discovered audio", "id", key, "error", err)
			continue
		}
		ref := models.AudioRef{ID: key, Name: info.Name}
		handle, err := scope.Acquire(ref)
		if err != nil {
			continue
		}
		log.Debug(ctx, "discovered unlisted audio", "id", key)
		found = append(found, models.HydratedMedia{Ref: ref, Handle: handle})
	}
	return found
}
