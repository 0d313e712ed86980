// Package packfile implements the append-only packed object format: a
// single file of zlib-compressed records (the pack) paired with a
// sorted-address side index (the idx) for O(log N) point lookup
// without scanning the pack.
package packfile

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"path/filepath"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/internal/cache"
	"github.com/entropic-dev/eos/internal/storepath"
)

// decodeCacheSize bounds the number of inflated payloads kept warm per
// open pack.
const decodeCacheSize = 256

// Pack is an opened, memory-mapped pack/index pair. The mapping is
// established at Open and held for the lifetime of the Pack; Get
// borrows slices of it without copying except for the inflated
// payload itself.
type Pack struct {
	path  string
	f     *os.File
	data  mmap.MMap
	idx   *Index
	cache *cache.LRU
}

// Open memory-maps packPath and loads its sibling index.
func Open(packPath, idxPath string) (*Pack, error) {
	f, err := os.Open(packPath)
	if err != nil {
		return nil, errors.Wrapf(err, "packfile: could not open %s", packPath)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "packfile: could not mmap %s", packPath)
	}

	if len(data) < fileHeaderSize {
		data.Unmap()
		f.Close()
		return nil, errors.Errorf("packfile: %s is too short to be a pack file", packPath)
	}
	if !bytes.Equal(data[0:4], PackMagic[:]) {
		data.Unmap()
		f.Close()
		return nil, errors.Errorf("packfile: %s has invalid magic", packPath)
	}

	idx, err := LoadIndex(idxPath)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, errors.Wrapf(err, "packfile: could not load index for %s", packPath)
	}

	return &Pack{
		path:  packPath,
		f:     f,
		data:  data,
		idx:   idx,
		cache: cache.NewLRU(decodeCacheSize),
	}, nil
}

// Close releases the memory mapping and the underlying file handle.
func (p *Pack) Close() error {
	if err := p.data.Unmap(); err != nil {
		return errors.Wrapf(err, "packfile: could not unmap %s", p.path)
	}
	return p.f.Close()
}

// Count returns the number of objects in the pack.
func (p *Pack) Count() int {
	return p.idx.Count()
}

// Get returns the envelope stored at addr, or (Envelope{}, false, nil)
// if this pack's index does not contain addr.
func (p *Pack) Get(addr envelope.Address) (envelope.Envelope, bool, error) {
	if v, ok := p.cache.Get(addr); ok {
		return v.(envelope.Envelope), true, nil
	}

	start, end, found := p.idx.Bounds(addr, uint64(len(p.data)))
	if !found {
		return envelope.Envelope{}, false, nil
	}
	if end > uint64(len(p.data)) || start >= end {
		return envelope.Envelope{}, false, errors.Errorf("packfile: bounds [%d,%d) out of range for %s", start, end, p.path)
	}

	region := p.data[start:end]
	r := bytes.NewReader(region)
	typ, size, headerLen, err := DecodeHeader(r)
	if err != nil {
		return envelope.Envelope{}, false, errors.Wrapf(err, "packfile: could not decode header for %s", addr)
	}

	tag, err := tagForType(typ)
	if err != nil {
		return envelope.Envelope{}, false, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(region[headerLen:]))
	if err != nil {
		return envelope.Envelope{}, false, errors.Wrapf(err, "packfile: could not inflate record for %s", addr)
	}
	defer zr.Close()

	payload, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return envelope.Envelope{}, false, errors.Wrapf(err, "packfile: could not read inflated record for %s", addr)
	}
	if uint64(len(payload)) != size {
		return envelope.Envelope{}, false, errors.Errorf("packfile: record %s declares size %d, inflated to %d", addr, size, len(payload))
	}

	env := envelope.New(tag, payload)
	p.cache.Add(addr, env)
	return env, true, nil
}

// Pair is a discovered pack/index file pair.
type Pair struct {
	PackPath  string
	IndexPath string
}

// discoverPairs enumerates <root>/pack/*.idx and pairs each with its
// sibling .pack file, skipping any .idx with no matching .pack.
func discoverPairs(root string) ([]Pair, error) {
	dir := filepath.Join(root, storepath.PackDir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "packfile: could not list %s", dir)
	}

	var pairs []Pair
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), storepath.IndexExt) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), storepath.IndexExt)
		packPath := filepath.Join(dir, base+storepath.PackExt)
		if _, err := os.Stat(packPath); err != nil {
			continue
		}
		pairs = append(pairs, Pair{
			PackPath:  packPath,
			IndexPath: filepath.Join(dir, e.Name()),
		})
	}
	return pairs, nil
}

// LoadAll opens every discoverable pack/index pair under
// <root>/pack. Malformed entries (bad magic, unreadable index) are
// skipped silently, per §4.5.
func LoadAll(root string) ([]*Pack, error) {
	pairs, err := discoverPairs(root)
	if err != nil {
		return nil, err
	}

	packs := make([]*Pack, 0, len(pairs))
	for _, pair := range pairs {
		p, err := Open(pair.PackPath, pair.IndexPath)
		if err != nil {
			continue
		}
		packs = append(packs, p)
	}
	return packs, nil
}
