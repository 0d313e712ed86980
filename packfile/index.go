package packfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/entropic-dev/eos/envelope"
)

const fanoutSize = 256

// indexHeaderSize is magic + version: 4 + 4.
const indexHeaderSize = 8

// ErrObjectNotFound is a sentinel error form of "object not found" for
// callers that want one. Neither Pack.Get nor Index.Bounds returns it;
// both report absence via their bool return.
var ErrObjectNotFound = errors.New("packfile: object not found")

// Entry is one (address, offset) pair collected while writing a pack,
// fed to BuildIndex once the whole pack has been written.
type Entry struct {
	Address envelope.Address
	Offset  uint64
}

// Index is the parsed, in-memory form of a pack index (.idx) file: a
// fanout table plus parallel sorted-address/offset slices, with a
// precomputed "next offset" chain that gives every entry a valid read
// upper bound regardless of the order records were written in.
type Index struct {
	fanout    [fanoutSize]uint32
	addresses []envelope.Address
	offsets   []uint32
	nextIndex []int // -1 for the entry with the greatest offset
}

// BuildIndex sorts entries by address and derives the fanout table and
// offset-order chain described in §4.5.
func BuildIndex(entries []Entry) *Index {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Address.Bytes(), sorted[j].Address.Bytes()) < 0
	})

	idx := &Index{
		addresses: make([]envelope.Address, len(sorted)),
		offsets:   make([]uint32, len(sorted)),
	}
	for i, e := range sorted {
		idx.addresses[i] = e.Address
		idx.offsets[i] = uint32(e.Offset)
	}

	for _, e := range sorted {
		idx.fanout[e.Address.Bytes()[0]]++
	}
	for i := 1; i < fanoutSize; i++ {
		idx.fanout[i] += idx.fanout[i-1]
	}

	idx.nextIndex = chainByOffset(idx.offsets)
	return idx
}

// chainByOffset returns, for each address-sorted position i, the
// address-sorted position of the entry whose offset immediately
// follows offsets[i] in file order, or -1 for the entry written last.
func chainByOffset(offsets []uint32) []int {
	n := len(offsets)
	byOffset := make([]int, n)
	for i := range byOffset {
		byOffset[i] = i
	}
	sort.Slice(byOffset, func(i, j int) bool {
		return offsets[byOffset[i]] < offsets[byOffset[j]]
	})

	next := make([]int, n)
	for i := range next {
		next[i] = -1
	}
	for k := 0; k < n-1; k++ {
		next[byOffset[k]] = byOffset[k+1]
	}
	return next
}

// Count returns the number of objects indexed.
func (idx *Index) Count() int {
	return len(idx.addresses)
}

// Bounds looks up addr and returns the half-open byte range [start,
// end) of its record within the pack, given the pack's total length
// (used as the end bound for the entry with the greatest offset).
func (idx *Index) Bounds(addr envelope.Address, packLen uint64) (start, end uint64, found bool) {
	b := addr.Bytes()[0]
	var lo uint32
	if b > 0 {
		lo = idx.fanout[b-1]
	}
	hi := idx.fanout[b]
	if lo >= hi {
		return 0, 0, false
	}

	target := addr.Bytes()
	i := sort.Search(int(hi-lo), func(k int) bool {
		return bytes.Compare(idx.addresses[int(lo)+k].Bytes(), target) >= 0
	}) + int(lo)

	if i >= int(hi) || idx.addresses[i] != addr {
		return 0, 0, false
	}

	start = uint64(idx.offsets[i])
	if idx.nextIndex[i] == -1 {
		end = packLen
	} else {
		end = uint64(idx.offsets[idx.nextIndex[i]])
	}
	return start, end, true
}

// Encode serializes the index to its on-disk byte layout.
func (idx *Index) Encode() []byte {
	n := idx.Count()
	buf := make([]byte, indexHeaderSize+fanoutSize*4+n*envelope.Size+n*4)

	copy(buf[0:4], IndexMagic[:])
	binary.BigEndian.PutUint32(buf[4:8], FormatVersion)

	off := indexHeaderSize
	for i := 0; i < fanoutSize; i++ {
		binary.BigEndian.PutUint32(buf[off:off+4], idx.fanout[i])
		off += 4
	}

	for _, a := range idx.addresses {
		copy(buf[off:off+envelope.Size], a.Bytes())
		off += envelope.Size
	}

	for _, o := range idx.offsets {
		binary.BigEndian.PutUint32(buf[off:off+4], o)
		off += 4
	}

	return buf
}

// ParseIndex parses the on-disk byte layout written by Encode.
func ParseIndex(data []byte) (*Index, error) {
	if len(data) < indexHeaderSize+fanoutSize*4 {
		return nil, errors.New("packfile: index file too short")
	}
	if !bytes.Equal(data[0:4], IndexMagic[:]) {
		return nil, errors.New("packfile: invalid index magic")
	}
	if v := binary.BigEndian.Uint32(data[4:8]); v != FormatVersion {
		return nil, errors.Errorf("packfile: unsupported index version %d", v)
	}

	idx := &Index{}
	off := indexHeaderSize
	for i := 0; i < fanoutSize; i++ {
		idx.fanout[i] = binary.BigEndian.Uint32(data[off : off+4])
		off += 4
	}

	n := int(idx.fanout[fanoutSize-1])
	want := off + n*envelope.Size + n*4
	if len(data) != want {
		return nil, errors.Errorf("packfile: index length mismatch: want %d got %d", want, len(data))
	}

	idx.addresses = make([]envelope.Address, n)
	for i := 0; i < n; i++ {
		addr, err := envelope.NewAddressFromBytes(data[off : off+envelope.Size])
		if err != nil {
			return nil, errors.Wrap(err, "packfile: invalid address in index")
		}
		idx.addresses[i] = addr
		off += envelope.Size
	}

	idx.offsets = make([]uint32, n)
	for i := 0; i < n; i++ {
		idx.offsets[i] = binary.BigEndian.Uint32(data[off : off+4])
		off += 4
	}

	idx.nextIndex = chainByOffset(idx.offsets)
	return idx, nil
}

// LoadIndex reads and parses the index file at path.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "packfile: could not read index %s", path)
	}
	idx, err := ParseIndex(data)
	if err != nil {
		return nil, errors.Wrapf(err, "packfile: could not parse index %s", path)
	}
	return idx, nil
}

// WriteIndexFile serializes idx and writes it to path.
func WriteIndexFile(path string, idx *Index) error {
	return os.WriteFile(path, idx.Encode(), 0o444)
}
