package packfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/entropic-dev/eos/envelope"
)

// Magic values for the two files that make up a pack pair.
var (
	PackMagic  = [4]byte{'E', 'N', 'T', 'S'}
	IndexMagic = [4]byte{'E', 'I', 'D', 'X'}
)

// FormatVersion is the only pack/index version this package writes or
// understands.
const FormatVersion uint32 = 0

// fileHeaderSize is the magic + version + object count: 4 + 4 + 8.
const fileHeaderSize = 16

// Writer appends object records to a pack file and tracks the byte
// offset each record starts at, for the caller to feed into
// BuildIndex.
type Writer struct {
	w      io.Writer
	offset uint64
}

// NewWriter wraps w. Callers normally pass a temp file opened under
// <root>/tmp, per the compaction procedure.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the pack file header: magic, version, object
// count. It must be called exactly once, before any WriteRecord call.
func (pw *Writer) WriteHeader(count uint64) error {
	buf := make([]byte, fileHeaderSize)
	copy(buf[0:4], PackMagic[:])
	binary.BigEndian.PutUint32(buf[4:8], FormatVersion)
	binary.BigEndian.PutUint64(buf[8:16], count)

	n, err := pw.w.Write(buf)
	pw.offset += uint64(n)
	if err != nil {
		return errors.Wrap(err, "packfile: could not write pack header")
	}
	return nil
}

// WriteRecord deflates env's payload and appends it as one record,
// returning the byte offset the record begins at (the header byte,
// not the compressed payload).
func (pw *Writer) WriteRecord(env envelope.Envelope) (offset uint64, err error) {
	typ, err := typeForTag(env.Tag())
	if err != nil {
		return 0, err
	}

	compressed, err := deflate(env.Payload())
	if err != nil {
		return 0, errors.Wrap(err, "packfile: could not compress record")
	}

	header := EncodeHeader(typ, uint64(len(env.Payload())))
	offset = pw.offset

	n, err := pw.w.Write(header)
	pw.offset += uint64(n)
	if err != nil {
		return 0, errors.Wrap(err, "packfile: could not write record header")
	}

	n, err = pw.w.Write(compressed)
	pw.offset += uint64(n)
	if err != nil {
		return 0, errors.Wrap(err, "packfile: could not write record body")
	}

	return offset, nil
}

func deflate(payload []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
