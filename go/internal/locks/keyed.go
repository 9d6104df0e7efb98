// Package locks provides a keyed mutex used to serialize writers per
// entity (per draft, per league) instead of globally.
package locks

import (
	"sync"

	"github.com/google/uuid"
)

// Keyed hands out one mutex per UUID key. Locks are never reclaimed;
// the key space (leagues, drafts) is small and long-lived.
type Keyed struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewKeyed constructs an empty keyed mutex set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *Keyed) get(key uuid.UUID) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key, creating it on first use.
func (k *Keyed) Lock(key uuid.UUID) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key.
func (k *Keyed) Unlock(key uuid.UUID) {
	k.get(key).Unlock()
}
