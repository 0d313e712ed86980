package packfile

import (
	"io"

	"github.com/pkg/errors"

	"github.com/entropic-dev/eos/envelope"
)

// Type is the 3-bit object type carried in a record header.
type Type uint8

// Record types. 3 and 4 are reserved for future delta-compressed
// records and are rejected on read.
const (
	TypeBlob    Type = 0
	TypeEvent   Type = 1
	TypeVersion Type = 2
)

// ErrInvalidType is returned when a record header carries a type value
// this implementation does not know how to resolve.
var ErrInvalidType = errors.New("packfile: invalid record type")

func typeForTag(tag envelope.Tag) (Type, error) {
	switch tag {
	case envelope.TagBlob:
		return TypeBlob, nil
	case envelope.TagEvent:
		return TypeEvent, nil
	case envelope.TagVersion:
		return TypeVersion, nil
	default:
		return 0, errors.Errorf("packfile: no record type for tag %s", tag)
	}
}

func tagForType(t Type) (envelope.Tag, error) {
	switch t {
	case TypeBlob:
		return envelope.TagBlob, nil
	case TypeEvent:
		return envelope.TagEvent, nil
	case TypeVersion:
		return envelope.TagVersion, nil
	default:
		return 0, errors.Wrapf(ErrInvalidType, "type %d", t)
	}
}

// EncodeHeader packs typ and size into a record header: the first byte
// holds (typ<<4)|(size&0xF), with bit 7 set when more bytes follow.
// Remaining size bits are emitted 7 at a time, little-endian, each with
// its own continuation bit.
func EncodeHeader(typ Type, size uint64) []byte {
	first := byte(typ<<4) | byte(size&0x0F)
	rest := size >> 4

	if rest == 0 {
		return []byte{first}
	}
	first |= 0x80

	buf := []byte{first}
	for rest > 0 {
		b := byte(rest & 0x7F)
		rest >>= 7
		if rest > 0 {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

// DecodeHeader reads a record header from r, returning its type, the
// declared (decompressed) payload size, and the number of header bytes
// consumed.
func DecodeHeader(r io.ByteReader) (typ Type, size uint64, n int, err error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "packfile: could not read record header")
	}
	n = 1

	typ = Type((first >> 4) & 0x07)
	size = uint64(first & 0x0F)
	cont := first&0x80 != 0
	shift := uint(4)

	for cont {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, 0, errors.Wrap(err, "packfile: could not read record header continuation")
		}
		n++
		size |= uint64(b&0x7F) << shift
		cont = b&0x80 != 0
		shift += 7
	}

	return typ, size, n, nil
}
