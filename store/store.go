// Package store defines the narrow interfaces that every backend
// (loose, packed, composite) implements, so callers can depend on the
// contract rather than a concrete backend.
package store

import "github.com/entropic-dev/eos/envelope"

// Readable can look an envelope up by content address.
type Readable interface {
	// Get returns the envelope stored at addr, or (Envelope{}, false, nil)
	// if no object with that address is known to this store.
	Get(addr envelope.Address) (envelope.Envelope, bool, error)
}

// Writable can durably add new envelopes.
type Writable interface {
	// Add stores env and returns true if it was newly written, false if
	// an object with the same address already existed.
	Add(env envelope.Envelope) (bool, error)
}

// ReadWritable combines Readable and Writable, the shape every primary
// (non-composite) backend satisfies.
type ReadWritable interface {
	Readable
	Writable
}
