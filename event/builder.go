package event

import (
	"bytes"
	"crypto/ed25519"
	"time"

	"golang.org/x/xerrors"
)

// Builder accumulates claims, deduplicated parent addresses, and an
// optional timestamp, then materializes and signs an Event.
//
// Builder-policy errors are recorded on the first offending call and
// surfaced from Sign; subsequent calls are still permitted to chain
// fluently but never overwrite the first recorded error, per §8's
// "Builder error reporting" property.
type Builder struct {
	claims   []Claim
	claimset uint8
	parents  map[ParentAddress]struct{}
	order    []ParentAddress
	at       *time.Time
	err      error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{parents: make(map[ParentAddress]struct{})}
}

// Parent adds p to the (deduplicated) parent set, keeping the order in
// which distinct parents were first added.
func (b *Builder) Parent(p ParentAddress) *Builder {
	if _, ok := b.parents[p]; !ok {
		b.parents[p] = struct{}{}
		b.order = append(b.order, p)
	}
	return b
}

// At overrides the event's timestamp. Without a call to At, Sign uses
// the current time.
func (b *Builder) At(t time.Time) *Builder {
	b.at = &t
	return b
}

// Claim appends c to the builder's claim list.
func (b *Builder) Claim(c Claim) *Builder {
	b.claims = append(b.claims, c)
	b.claimset |= c.Bitmask()
	return b
}

// fail records err if no error has been recorded yet.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Sign materializes the accumulated claims/parents/timestamp into an
// Event, runs the pre-sign authority check when authorities is
// non-nil and non-empty, signs the unsigned serialization with sk, and
// returns the signed Event.
//
// When authorities is nil or empty, the pre-sign check is a no-op —
// this is the hook spec.md §4.8 reserves but permits an empty
// implementation of; existing callers that never supply an
// AuthoritySet see no behavior change.
func (b *Builder) Sign(signatory string, sk ed25519.PrivateKey, authorities *AuthoritySet) (*Event, error) {
	if b.err != nil {
		return nil, b.err
	}

	if authorities != nil && authorities.Len() > 0 {
		if !authorities.Has(signatory) {
			return nil, ErrNotAuthoritative
		}
	}

	at := time.Now()
	if b.at != nil {
		at = *b.at
	}

	parents := make([]ParentAddress, len(b.order))
	copy(parents, b.order)

	e := &Event{
		claimset:  b.claimset,
		at:        at.Truncate(time.Second),
		parents:   parents,
		claims:    b.claims,
		signatory: signatory,
	}

	buf := &bytes.Buffer{}
	if err := e.MarshalUnsigned(buf); err != nil {
		return nil, xerrors.Errorf("event: could not serialize for signing: %w", err)
	}

	sig := ed25519.Sign(sk, buf.Bytes())
	copy(e.signature[:], sig)

	return e, nil
}
