// Package event implements the signed-event DAG node: its claim
// codec, Ed25519 signing and verification, a fluent builder, and a
// timestamp-ordered iterator for walking an event's ancestry.
package event

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"io"
	"time"
	"unicode/utf8"

	"golang.org/x/xerrors"

	"github.com/entropic-dev/eos/internal/varint"
)

// SignatureSize is the length in bytes of an Ed25519 detached
// signature.
const SignatureSize = ed25519.SignatureSize

// Event is a signed DAG node: a timestamped set of claims with
// optional parent links, attributed to a signatory and authenticated
// by an Ed25519 signature over its unsigned serialization.
type Event struct {
	claimset  uint8
	at        time.Time
	parents   []ParentAddress
	claims    []Claim
	signatory string
	signature [SignatureSize]byte
}

// ParentAddress is a 32-byte content address of a parent event.
type ParentAddress [32]byte

// Claimset returns the bitmask summarizing which claim kinds are
// present.
func (e *Event) Claimset() uint8 { return e.claimset }

// At returns the event's timestamp, truncated to whole seconds (the
// wire format carries no finer resolution).
func (e *Event) At() time.Time { return e.at }

// Parents returns the event's parent addresses, in the order they were
// added.
func (e *Event) Parents() []ParentAddress { return e.parents }

// Claims returns the event's claims, in the order they were added.
func (e *Event) Claims() []Claim { return e.claims }

// Signatory returns the free-form identity string the signer claims.
func (e *Event) Signatory() string { return e.signatory }

// Signature returns the 64-byte Ed25519 detached signature.
func (e *Event) Signature() [SignatureSize]byte { return e.signature }

// HasClaimKind reports whether the event's claimset includes bit.
func (e *Event) HasClaimKind(bit uint8) bool {
	return e.claimset&bit != 0
}

// MarshalUnsigned writes the unsigned serialization: everything the
// signature covers, per §4.7.
func (e *Event) MarshalUnsigned(w io.Writer) error {
	bw := asByteWriter(w)

	if _, err := w.Write([]byte{e.claimset}); err != nil {
		return xerrors.Errorf("event: could not write claimset: %w", err)
	}

	var atBuf [8]byte
	binary.BigEndian.PutUint64(atBuf[:], uint64(e.at.Unix()))
	if _, err := w.Write(atBuf[:]); err != nil {
		return xerrors.Errorf("event: could not write at: %w", err)
	}

	if _, err := varint.Write(bw, uint64(len(e.parents))); err != nil {
		return xerrors.Errorf("event: could not write parent count: %w", err)
	}
	for _, p := range e.parents {
		if _, err := w.Write(p[:]); err != nil {
			return xerrors.Errorf("event: could not write parent address: %w", err)
		}
	}

	if _, err := varint.Write(bw, uint64(len(e.claims))); err != nil {
		return xerrors.Errorf("event: could not write claim count: %w", err)
	}
	for _, c := range e.claims {
		body, err := EncodeClaimBody(c)
		if err != nil {
			return err
		}
		if _, err := varint.Write(bw, uint64(len(body))); err != nil {
			return xerrors.Errorf("event: could not write claim length: %w", err)
		}
		if _, err := w.Write(body); err != nil {
			return xerrors.Errorf("event: could not write claim body: %w", err)
		}
	}

	if _, err := varint.WriteString(bw, e.signatory); err != nil {
		return xerrors.Errorf("event: could not write signatory: %w", err)
	}

	return nil
}

// Marshal writes the signed serialization: the unsigned bytes followed
// by the raw 64-byte signature.
func (e *Event) Marshal(w io.Writer) error {
	if err := e.MarshalUnsigned(w); err != nil {
		return err
	}
	_, err := w.Write(e.signature[:])
	if err != nil {
		return xerrors.Errorf("event: could not write signature: %w", err)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *Event) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := e.Marshal(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse reverses Marshal. It rejects parent counts or claim lengths
// that overrun the input, and signatory bytes that are not valid
// UTF-8, per §4.7.
func Parse(data []byte) (*Event, error) {
	if len(data) < 1 {
		return nil, xerrors.New("event: empty input while reading claimset")
	}

	claimset := data[0]
	r := bytes.NewReader(data[1:])

	var atBuf [8]byte
	if _, err := io.ReadFull(r, atBuf[:]); err != nil {
		return nil, xerrors.Errorf("event: could not read at: %w", err)
	}
	at := time.Unix(int64(binary.BigEndian.Uint64(atBuf[:])), 0).UTC()

	parentCount, err := varint.Read(r)
	if err != nil {
		return nil, xerrors.Errorf("event: could not read parent count: %w", err)
	}
	if parentCount > uint64(r.Len())/32 {
		return nil, xerrors.New("event: parent count exceeds remaining bytes")
	}
	parents := make([]ParentAddress, parentCount)
	for i := range parents {
		if _, err := io.ReadFull(r, parents[i][:]); err != nil {
			return nil, xerrors.Errorf("event: could not read parent address: %w", err)
		}
	}

	claimCount, err := varint.Read(r)
	if err != nil {
		return nil, xerrors.Errorf("event: could not read claim count: %w", err)
	}
	claims := make([]Claim, 0, claimCount)
	for i := uint64(0); i < claimCount; i++ {
		claimLen, err := varint.Read(r)
		if err != nil {
			return nil, xerrors.Errorf("event: could not read claim length: %w", err)
		}
		if claimLen > uint64(r.Len()) {
			return nil, xerrors.New("event: claim length overruns buffer")
		}
		body := make([]byte, claimLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, xerrors.Errorf("event: could not read claim body: %w", err)
		}
		claim, err := DecodeClaimBody(body)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	signatory, err := varint.ReadString(r)
	if err != nil {
		return nil, xerrors.Errorf("event: could not read signatory: %w", err)
	}
	if !utf8.ValidString(signatory) {
		return nil, xerrors.New("event: signatory is not valid UTF-8")
	}

	var signature [SignatureSize]byte
	if _, err := io.ReadFull(r, signature[:]); err != nil || r.Len() != 0 {
		return nil, xerrors.New("event: signature must be exactly 64 bytes")
	}

	return &Event{
		claimset:  claimset,
		at:        at,
		parents:   parents,
		claims:    claims,
		signatory: signatory,
		signature: signature,
	}, nil
}

// Verify checks that the event's signature is valid for its unsigned
// serialization under pub.
func (e *Event) Verify(pub ed25519.PublicKey) (bool, error) {
	buf := &bytes.Buffer{}
	if err := e.MarshalUnsigned(buf); err != nil {
		return false, err
	}
	return ed25519.Verify(pub, buf.Bytes(), e.signature[:]), nil
}

type byteWriter struct{ io.Writer }

func (b byteWriter) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

func asByteWriter(w io.Writer) io.ByteWriter {
	if bw, ok := w.(io.ByteWriter); ok {
		return bw
	}
	return byteWriter{w}
}
