// Package handles issues ephemeral access handles for blobs.
//
// A handle stands in for a blob while a note is held in memory, the way an
// object URL stands in for a file in a browser. Handles are never persisted.
// Each handle must be released exactly once; Scope groups the handles of one
// hydrated note or draft so they can be released together.
package handles

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/client/repositories/blobs"
	"github.com/dmitrijs2005/clipnote/internal/common"
)

// ErrReleased is returned for a handle that was never issued or has already
// been released.
var ErrReleased = errors.New("handle released")

// Target is what a handle resolves to. Staged targets carry a payload that
// has not been written to the blob store yet.
type Target struct {
	Kind   models.MediaKind
	ID     string
	Staged []byte
}

// Registry tracks live handles. It is safe for concurrent use.
type Registry struct {
	store blobs.Store

	mu   sync.Mutex
	live map[models.Handle]Target
}

func NewRegistry(store blobs.Store) *Registry {
	return &Registry{store: store, live: make(map[models.Handle]Target)}
}

func newHandle() models.Handle {
	return models.Handle(common.HandleScheme + uuid.NewString())
}

// IsHandle reports whether s looks like a handle issued by a Registry.
func IsHandle(s string) bool {
	return strings.HasPrefix(s, common.HandleScheme)
}

// Acquire issues a handle for a stored blob.
func (r *Registry) Acquire(ref models.MediaRef) models.Handle {
	return r.add(Target{Kind: ref.Kind(), ID: ref.BlobID()})
}

// AcquireStaged issues a handle for a payload held in memory.
func (r *Registry) AcquireStaged(ref models.MediaRef, payload []byte) models.Handle {
	return r.add(Target{Kind: ref.Kind(), ID: ref.BlobID(), Staged: payload})
}

func (r *Registry) add(t Target) models.Handle {
	h := newHandle()
	r.mu.Lock()
	r.live[h] = t
	r.mu.Unlock()
	return h
}

// Release revokes a handle.
func (r *Registry) Release(h models.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[h]; !ok {
		return ErrReleased
	}
	delete(r.live, h)
	return nil
}

// Resolve returns the target of a live handle.
func (r *Registry) Resolve(h models.Handle) (Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.live[h]
	if !ok {
		return Target{}, ErrReleased
	}
	return t, nil
}

// Open streams the blob behind a live handle.
func (r *Registry) Open(ctx context.Context, h models.Handle) (io.ReadCloser, error) {
	t, err := r.Resolve(h)
	if err != nil {
		return nil, err
	}
	if t.Staged != nil {
		return io.NopCloser(bytes.NewReader(t.Staged)), nil
	}
	return r.store.Open(ctx, t.Kind, t.ID)
}

// Live returns the number of unreleased handles.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// NewScope returns an empty scope backed by r.
func (r *Registry) NewScope() *Scope {
	return &Scope{reg: r, owned: make(map[models.Handle]struct{})}
}
