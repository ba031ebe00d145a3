package handles

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
)

// Scope owns a set of handles. Closing the scope releases all of them; a
// closed scope issues no further handles.
type Scope struct {
	reg *Registry

	mu     sync.Mutex
	owned  map[models.Handle]struct{}
	closed bool
}

var errScopeClosed = errors.New("handle scope closed")

func (s *Scope) Acquire(ref models.MediaRef) (models.Handle, error) {
	return s.track(s.reg.Acquire(ref))
}

func (s *Scope) AcquireStaged(ref models.MediaRef, payload []byte) (models.Handle, error) {
	return s.track(s.reg.AcquireStaged(ref, payload))
}

func (s *Scope) track(h models.Handle) (models.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = s.reg.Release(h)
		return "", errScopeClosed
	}
	s.owned[h] = struct{}{}
	return h, nil
}

// Release revokes one handle owned by the scope.
func (s *Scope) Release(h models.Handle) error {
	s.mu.Lock()
	_, ok := s.owned[h]
	delete(s.owned, h)
	s.mu.Unlock()
	if !ok {
		return ErrReleased
	}
	return s.reg.Release(h)
}

// Len returns the number of handles the scope still owns.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owned)
}

// Close releases every owned handle. It is safe to call more than once.
func (s *Scope) Close() error {
	s.mu.Lock()
	owned := s.owned
	s.owned = make(map[models.Handle]struct{})
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for h := range owned {
		if err := s.reg.Release(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
