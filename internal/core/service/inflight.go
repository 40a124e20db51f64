package service

import (
	"errors"
	"sync"

	"github.com/noteapp/client/internal/core/domain"
)

// inflight tracks actions awaiting a backend reply. A second acquire of the
// same key fails until the first is released, which is what keeps a double
// click from firing a second request.
type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{keys: make(map[string]struct{})}
}

// acquire reserves key. ok is false when key is already held.
func (f *inflight) acquire(key string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, held := f.keys[key]; held {
		return nil, false
	}
	f.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.keys, key)
			f.mu.Unlock()
		})
	}, true
}

func isBusy(err error) bool {
	return errors.Is(err, domain.ErrBusy)
}
