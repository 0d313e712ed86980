// Package version (de)serializes the payload carried inside a Version
// envelope: an ordered manifest of (path, content address) pairs
// describing the files that make up one published package version.
//
// The store itself never interprets Version payload bytes — this
// package is a convenience for callers that do want to decode them.
package version

import (
	"bytes"
	"io"

	"golang.org/x/xerrors"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/internal/varint"
)

// Entry is one (path, content address) pair in a Manifest.
type Entry struct {
	Path    string
	Address envelope.Address
}

// Manifest is the ordered list of files making up a package version.
// Order is preserved rather than sorted into a map, matching the
// original implementation's own locality rationale: consumers usually
// want to walk entries in the order they were declared.
type Manifest struct {
	Entries []Entry
}

// Encode serializes m: a varint entry count, then for each entry a
// varint-length-prefixed path followed by its 32-byte address.
func (m Manifest) Encode() []byte {
	buf := &bytes.Buffer{}
	_, _ = varint.Write(buf, uint64(len(m.Entries)))
	for _, e := range m.Entries {
		_, _ = varint.WriteString(buf, e.Path)
		buf.Write(e.Address.Bytes())
	}
	return buf.Bytes()
}

// Decode parses the byte layout written by Encode.
func Decode(data []byte) (Manifest, error) {
	r := bytes.NewReader(data)

	count, err := varint.Read(r)
	if err != nil {
		return Manifest{}, xerrors.Errorf("version: could not read entry count: %w", err)
	}
	if count > uint64(r.Len()) {
		return Manifest{}, xerrors.New("version: entry count exceeds remaining bytes")
	}

	entries := make([]Entry, 0, count)
	for i := uint64(0); i < count; i++ {
		path, err := varint.ReadString(r)
		if err != nil {
			return Manifest{}, xerrors.Errorf("version: could not read entry path: %w", err)
		}

		var raw [envelope.Size]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return Manifest{}, xerrors.Errorf("version: could not read entry address: %w", err)
		}
		addr, err := envelope.NewAddressFromBytes(raw[:])
		if err != nil {
			return Manifest{}, xerrors.Errorf("version: invalid entry address: %w", err)
		}

		entries = append(entries, Entry{Path: path, Address: addr})
	}

	return Manifest{Entries: entries}, nil
}
