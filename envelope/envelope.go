// Package envelope implements the tagged, content-addressed wrapper
// around the three payload kinds the store knows how to hold: blobs,
// package-version manifests, and signed events.
package envelope

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Tag identifies the kind of payload an Envelope wraps.
type Tag int8

// The three kinds of envelope this store knows about. The string form
// of each is the 4-byte ASCII framing tag fed to the hasher and written
// to loose objects.
const (
	TagBlob Tag = iota + 1
	TagVersion
	TagEvent
)

// ErrUnknownTag is returned when a 4-byte framing tag doesn't match any
// known envelope kind.
var ErrUnknownTag = errors.New("envelope: unknown tag")

// String returns the 4-byte ASCII framing string for the tag.
func (t Tag) String() string {
	switch t {
	case TagBlob:
		return "blob"
	case TagVersion:
		return "vers"
	case TagEvent:
		return "sign"
	default:
		panic(fmt.Sprintf("envelope: unknown tag %d", t))
	}
}

// TagFromString parses a 4-byte ASCII framing string into a Tag.
func TagFromString(s string) (Tag, error) {
	switch s {
	case "blob":
		return TagBlob, nil
	case "vers":
		return TagVersion, nil
	case "sign":
		return TagEvent, nil
	default:
		return 0, ErrUnknownTag
	}
}

// Size is the length in bytes of a content address (SHA-256).
const Size = sha256.Size

// Address is the 32-byte SHA-256 content address of a framed envelope.
type Address [Size]byte

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the lowercase hex encoding of the address.
func (a Address) String() string {
	return fmt.Sprintf("%x", a[:])
}

// Bytes returns the address as a slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// NewAddressFromBytes builds an Address from a 32-byte slice.
func NewAddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("envelope: address must be %d bytes, got %d", Size, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Envelope is a tagged payload. The zero value is not valid; use New.
type Envelope struct {
	tag     Tag
	payload []byte
}

// New wraps payload with the given tag.
func New(tag Tag, payload []byte) Envelope {
	return Envelope{tag: tag, payload: payload}
}

// Tag returns the envelope's kind.
func (e Envelope) Tag() Tag {
	return e.tag
}

// Payload returns the raw payload bytes.
func (e Envelope) Payload() []byte {
	return e.payload
}

// Header returns the framing header string fed to the hasher ahead of
// the payload: `TAG " " ASCII_LEN "\0"`.
func (e Envelope) Header() string {
	return fmt.Sprintf("%s %d\x00", e.tag, len(e.payload))
}

// Framed returns the full framed byte sequence: header followed by
// payload. This is exactly what gets zlib-deflated for a loose object.
func (e Envelope) Framed() []byte {
	header := e.Header()
	out := make([]byte, 0, len(header)+len(e.payload))
	out = append(out, header...)
	out = append(out, e.payload...)
	return out
}

// Address computes the content address of the envelope: the SHA-256
// digest of its framed bytes.
func (e Envelope) Address() Address {
	addr, _ := e.ContentAddress()
	return addr
}

// ContentAddress computes the SHA-256 digest of the envelope's framed
// bytes and returns it alongside the header string that was fed to the
// hasher, so a loose-object writer can reuse it instead of rebuilding
// the header a second time.
func (e Envelope) ContentAddress() (Address, string) {
	header := e.Header()
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(e.payload)
	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr, header
}
