// Package loose implements the "loose object" layout: each object lives
// as an individually zlib-compressed file, named by its content
// address, under a two-character shard directory.
package loose

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/internal/errutil"
	"github.com/entropic-dev/eos/internal/readutil"
	"github.com/entropic-dev/eos/internal/storepath"
	"github.com/entropic-dev/eos/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrLengthMismatch is returned when a loose object's declared payload
// length doesn't match the number of bytes actually stored.
var ErrLengthMismatch = errors.New("loose: declared length does not match payload")

// Store is a content-addressed loose object store rooted at a
// directory. It is safe for concurrent use.
type Store struct {
	root string
	fs   afero.Fs
	mu   *syncutil.NamedMutex
}

// New returns a Store rooted at root, using fs for all filesystem
// access. Pass afero.NewOsFs() for the real filesystem, or
// afero.NewMemMapFs() in tests.
func New(root string, fs afero.Fs) *Store {
	return &Store{
		root: root,
		fs:   fs,
		mu:   syncutil.NewNamedMutex(257), // prime, per NamedMutex's own advice
	}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Add writes env to the loose store if it isn't already present. It
// returns true if the object was newly stored, false if an object with
// the same address already existed.
//
// The write is crash-safe: the compressed bytes are written to a temp
// file, fsynced, then atomically renamed into place. A crash before the
// rename leaves only a stray temp file; readers never see a partial
// object at the final path.
func (s *Store) Add(env envelope.Envelope) (added bool, err error) {
	addr, header := env.ContentAddress()
	key := addr.Bytes()
	s.mu.Lock(key)
	defer s.mu.Unlock(key)

	hex := addr.String()
	finalPath := storepath.LoosePath(s.root, hex)

	if _, statErr := s.fs.Stat(finalPath); statErr == nil {
		return false, nil
	} else if !os.IsNotExist(statErr) {
		return false, xerrors.Errorf("loose: could not stat %s: %w", finalPath, statErr)
	}

	shardDir := storepath.ShardDir(s.root, hex)
	if err := s.fs.MkdirAll(shardDir, 0o755); err != nil {
		return false, xerrors.Errorf("loose: could not create shard dir %s: %w", shardDir, err)
	}

	tmpDir := storepath.TmpPath(s.root)
	if err := s.fs.MkdirAll(tmpDir, 0o755); err != nil {
		return false, xerrors.Errorf("loose: could not create tmp dir %s: %w", tmpDir, err)
	}

	compressed, err := compress(header, env.Payload())
	if err != nil {
		return false, xerrors.Errorf("loose: could not compress object %s: %w", hex, err)
	}

	tmpPath := filepath.Join(tmpDir, "loose-"+strconv.Itoa(os.Getpid())+"-"+hex)
	f, err := s.fs.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o444)
	if err != nil {
		return false, xerrors.Errorf("loose: could not create temp file %s: %w", tmpPath, err)
	}
	if _, err = f.Write(compressed); err != nil {
		errutil.Close(f, &err)
		return false, xerrors.Errorf("loose: could not write temp file %s: %w", tmpPath, err)
	}
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err = syncer.Sync(); err != nil {
			errutil.Close(f, &err)
			return false, xerrors.Errorf("loose: could not fsync temp file %s: %w", tmpPath, err)
		}
	}
	if err = f.Close(); err != nil {
		return false, xerrors.Errorf("loose: could not close temp file %s: %w", tmpPath, err)
	}

	if err = s.fs.Rename(tmpPath, finalPath); err != nil {
		return false, xerrors.Errorf("loose: could not publish object %s: %w", hex, err)
	}

	return true, nil
}

// Get returns the envelope stored at addr, or (Envelope{}, false, nil)
// if no loose object with that address exists.
func (s *Store) Get(addr envelope.Address) (env envelope.Envelope, found bool, err error) {
	hex := addr.String()
	path := storepath.LoosePath(s.root, hex)

	f, err := s.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return envelope.Envelope{}, false, nil
		}
		return envelope.Envelope{}, false, xerrors.Errorf("loose: could not open %s: %w", path, err)
	}
	defer errutil.Close(f, &err)

	zr, err := zlib.NewReader(f)
	if err != nil {
		return envelope.Envelope{}, false, xerrors.Errorf("loose: could not inflate %s: %w", path, err)
	}
	defer errutil.Close(zr, &err)

	raw, err := io.ReadAll(zr)
	if err != nil {
		return envelope.Envelope{}, false, xerrors.Errorf("loose: could not read %s: %w", path, err)
	}

	env, err = DecodeFramed(raw)
	if err != nil {
		return envelope.Envelope{}, false, xerrors.Errorf("loose: could not decode %s: %w", path, err)
	}
	return env, true, nil
}

// compress zlib-deflates the framed envelope: header followed by
// payload.
func compress(header string, payload []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write([]byte(header)); err != nil {
		return nil, err
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFramed parses `TAG " " ASCII_LEN "\0" PAYLOAD` out of raw. It is
// shared with the compact package, which reads loose objects directly
// off disk without going through a Store.
func DecodeFramed(raw []byte) (envelope.Envelope, error) {
	tagBytes := readutil.ReadTo(raw, ' ')
	if tagBytes == nil {
		return envelope.Envelope{}, errors.New("loose: could not find tag")
	}
	offset := len(tagBytes) + 1

	lenBytes := readutil.ReadTo(raw[offset:], 0)
	if lenBytes == nil {
		return envelope.Envelope{}, errors.New("loose: could not find length")
	}
	offset += len(lenBytes) + 1

	declared, err := strconv.Atoi(string(lenBytes))
	if err != nil {
		return envelope.Envelope{}, xerrors.Errorf("loose: invalid length %q: %w", lenBytes, err)
	}

	payload := raw[offset:]
	if len(payload) != declared {
		return envelope.Envelope{}, xerrors.Errorf("%w: declared %d, got %d", ErrLengthMismatch, declared, len(payload))
	}

	tag, err := envelope.TagFromString(string(tagBytes))
	if err != nil {
		return envelope.Envelope{}, err
	}

	body := make([]byte, len(payload))
	copy(body, payload)
	return envelope.New(tag, body), nil
}
