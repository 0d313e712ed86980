package event

import (
	"bytes"
	"io"

	"golang.org/x/xerrors"

	"github.com/entropic-dev/eos/internal/varint"
)

// Bitmask bits for each recognized claim kind, per §3. Bit 0x04 is
// reserved: it used to carry a dedicated Date claim before the event's
// own `at` field superseded it.
const (
	BitAuthorityAdd    uint8 = 0x01
	BitAuthorityRemove uint8 = 0x02
	BitYank            uint8 = 0x08
	BitUnyank          uint8 = 0x10
	BitTag             uint8 = 0x20
	BitPublication     uint8 = 0x40

	// OtherMinTypeNo is the smallest typeno an Other claim may carry;
	// it is chosen so it can never collide with a known single-bit tag.
	OtherMinTypeNo uint64 = 0x80
)

// Claim is a single tagged record inside an Event's claim list. The
// set of kinds is closed except for Other, which carries caller-chosen
// typeno/data.
type Claim interface {
	// Bitmask returns the bit this claim's kind contributes to an
	// Event's claimset summary.
	Bitmask() uint8

	writeBody(w io.Writer) error
	sealed()
}

// AuthorityAdd claims that public_key is now recognized as a signing
// key for name.
type AuthorityAdd struct {
	PublicKey string
	Name      string
}

func (AuthorityAdd) Bitmask() uint8 { return BitAuthorityAdd }
func (AuthorityAdd) sealed()        {}

func (c AuthorityAdd) writeBody(w io.Writer) error {
	if err := writeTagByte(w, BitAuthorityAdd); err != nil {
		return err
	}
	if err := writeVarintString(w, c.PublicKey); err != nil {
		return err
	}
	return writeVarintString(w, c.Name)
}

// AuthorityRemove claims that name is no longer a recognized authority.
type AuthorityRemove struct {
	Name string
}

func (AuthorityRemove) Bitmask() uint8 { return BitAuthorityRemove }
func (AuthorityRemove) sealed()        {}

func (c AuthorityRemove) writeBody(w io.Writer) error {
	if err := writeTagByte(w, BitAuthorityRemove); err != nil {
		return err
	}
	return writeVarintString(w, c.Name)
}

// Yank claims that version is withdrawn, for reason.
type Yank struct {
	Version string
	Reason  string
}

func (Yank) Bitmask() uint8 { return BitYank }
func (Yank) sealed()        {}

func (c Yank) writeBody(w io.Writer) error {
	if err := writeTagByte(w, BitYank); err != nil {
		return err
	}
	if err := writeVarintString(w, c.Version); err != nil {
		return err
	}
	return writeVarintString(w, c.Reason)
}

// Unyank reverses an earlier Yank of version.
type Unyank struct {
	Version string
}

func (Unyank) Bitmask() uint8 { return BitUnyank }
func (Unyank) sealed()        {}

func (c Unyank) writeBody(w io.Writer) error {
	if err := writeTagByte(w, BitUnyank); err != nil {
		return err
	}
	return writeVarintString(w, c.Version)
}

// TagClaim attaches a human-readable tag name to version. (Named
// TagClaim, not Tag, to stay unambiguous next to envelope.Tag.)
type TagClaim struct {
	TagName string
	Version string
}

func (TagClaim) Bitmask() uint8 { return BitTag }
func (TagClaim) sealed()        {}

func (c TagClaim) writeBody(w io.Writer) error {
	if err := writeTagByte(w, BitTag); err != nil {
		return err
	}
	if err := writeVarintString(w, c.Version); err != nil {
		return err
	}
	return writeVarintString(w, c.TagName)
}

// Publication claims that version was published, identified by ID (a
// 32-byte content address of the associated Version envelope).
type Publication struct {
	Version string
	ID      [32]byte
}

func (Publication) Bitmask() uint8 { return BitPublication }
func (Publication) sealed()        {}

func (c Publication) writeBody(w io.Writer) error {
	if err := writeTagByte(w, BitPublication); err != nil {
		return err
	}
	if err := writeVarintString(w, c.Version); err != nil {
		return err
	}
	_, err := w.Write(c.ID[:])
	return err
}

// Other is the catch-all claim kind: a caller-chosen typeno (which
// must be >= OtherMinTypeNo so it can never be mistaken for a known
// single-bit tag) followed by raw data extending to the end of the
// claim body.
type Other struct {
	TypeNo uint64
	Data   []byte
}

func (Other) Bitmask() uint8 { return 0x80 }
func (Other) sealed()        {}

func (c Other) writeBody(w io.Writer) error {
	if c.TypeNo < OtherMinTypeNo {
		return xerrors.Errorf("event: Other claim typeno %#x must be >= %#x", c.TypeNo, OtherMinTypeNo)
	}
	if _, err := varint.Write(asByteWriter(w), c.TypeNo); err != nil {
		return err
	}
	_, err := w.Write(c.Data)
	return err
}

func writeTagByte(w io.Writer, tag uint8) error {
	_, err := varint.Write(asByteWriter(w), uint64(tag))
	return err
}

func writeVarintString(w io.Writer, s string) error {
	_, err := varint.WriteString(asByteWriter(w), s)
	return err
}

// EncodeClaimBody serializes a single claim's body: the leading tag
// (or, for Other, typeno) varint followed by its kind-specific fields.
func EncodeClaimBody(c Claim) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := c.writeBody(buf); err != nil {
		return nil, xerrors.Errorf("event: could not encode claim: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeClaimBody parses a single claim body previously produced by
// EncodeClaimBody.
func DecodeClaimBody(data []byte) (Claim, error) {
	r := bytes.NewReader(data)
	tag, err := varint.Read(r)
	if err != nil {
		return nil, xerrors.Errorf("event: could not read claim tag: %w", err)
	}

	switch tag {
	case uint64(BitAuthorityAdd):
		pubKey, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: AuthorityAdd.public_key: %w", err)
		}
		name, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: AuthorityAdd.name: %w", err)
		}
		return AuthorityAdd{PublicKey: pubKey, Name: name}, nil

	case uint64(BitAuthorityRemove):
		name, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: AuthorityRemove.name: %w", err)
		}
		return AuthorityRemove{Name: name}, nil

	case uint64(BitYank):
		version, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Yank.version: %w", err)
		}
		reason, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Yank.reason: %w", err)
		}
		return Yank{Version: version, Reason: reason}, nil

	case uint64(BitUnyank):
		version, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Unyank.version: %w", err)
		}
		return Unyank{Version: version}, nil

	case uint64(BitTag):
		version, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Tag.version: %w", err)
		}
		tagName, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Tag.tag: %w", err)
		}
		return TagClaim{TagName: tagName, Version: version}, nil

	case uint64(BitPublication):
		version, err := varint.ReadString(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Publication.version: %w", err)
		}
		var id [32]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return nil, xerrors.Errorf("event: Publication.id: %w", err)
		}
		return Publication{Version: version, ID: id}, nil

	default:
		rest, err := io.ReadAll(r)
		if err != nil {
			return nil, xerrors.Errorf("event: Other.data: %w", err)
		}
		if len(rest) == 0 {
			rest = nil
		}
		return Other{TypeNo: tag, Data: rest}, nil
	}
}
