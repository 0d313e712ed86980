// Package composite implements a priority-ordered reader over several
// stores: the first one holding a given address wins.
package composite

import (
	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/store"
)

// Store reads from an ordered list of backends, returning the first
// hit. A typical stack is a loose store (newest objects) followed by
// one or more packed stores (compacted history).
type Store struct {
	readers []store.Readable
}

// New returns a Store that consults readers in order.
func New(readers ...store.Readable) *Store {
	return &Store{readers: readers}
}

// Get returns the first match among the underlying readers, or
// (Envelope{}, false, nil) if none of them have addr.
func (s *Store) Get(addr envelope.Address) (envelope.Envelope, bool, error) {
	for _, r := range s.readers {
		env, found, err := r.Get(addr)
		if err != nil {
			return envelope.Envelope{}, false, err
		}
		if found {
			return env, true, nil
		}
	}
	return envelope.Envelope{}, false, nil
}
