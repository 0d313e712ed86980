// Package syncutil contains synchronization helpers shared across the
// store packages.
package syncutil

import (
	"sync"

	"github.com/gogf/gf/encoding/ghash"
)

// NamedMutex is a fixed-size array of RWMutex, with a key hashed down to
// a slot. Two different keys may collide and share a lock; that's an
// accepted trade-off for not having to maintain a map of live locks.
//
// This guards a single process against issuing two concurrent writes to
// the same content address; it does nothing for multiple processes,
// which is why loose writes still rely on atomic rename to be correct
// across process boundaries.
type NamedMutex struct {
	locks []sync.RWMutex
	size  uint32
}

// NewNamedMutex creates a NamedMutex with the given number of slots. A
// prime size spreads hash collisions more evenly; anything below 2 is
// bumped to 2.
func NewNamedMutex(slots uint32) *NamedMutex {
	if slots < 2 {
		slots = 2
	}
	return &NamedMutex{
		size:  slots,
		locks: make([]sync.RWMutex, slots),
	}
}

func (mu *NamedMutex) slot(key []byte) uint32 {
	return ghash.SDBMHash(key) % mu.size
}

// Lock locks the slot for key.
func (mu *NamedMutex) Lock(key []byte) {
	mu.locks[mu.slot(key)].Lock()
}

// Unlock unlocks the slot for key.
func (mu *NamedMutex) Unlock(key []byte) {
	mu.locks[mu.slot(key)].Unlock()
}

// RLock read-locks the slot for key.
func (mu *NamedMutex) RLock(key []byte) {
	mu.locks[mu.slot(key)].RLock()
}

// RUnlock undoes a single RLock call for key.
func (mu *NamedMutex) RUnlock(key []byte) {
	mu.locks[mu.slot(key)].RUnlock()
}
