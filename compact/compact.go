// Package compact implements the loose-to-packed compaction pipeline:
// walk a loose object store's shard directories, stream every object
// found into a fresh pack file, and write its sorted index.
package compact

import (
	"compress/zlib"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/internal/errutil"
	"github.com/entropic-dev/eos/internal/storepath"
	"github.com/entropic-dev/eos/loose"
	"github.com/entropic-dev/eos/packfile"
)

// MaxInFlight bounds how many loose objects are read from disk
// concurrently during a single compaction run.
const MaxInFlight = 1024

// Result reports what a Run produced.
type Result struct {
	PackPath  string
	IndexPath string
	Count     int
}

// Run walks root for loose objects, writes them into a new pack under
// <root>/pack named after the current process id, and returns the
// paths written. Loose files are left in place; removing superseded
// loose objects is out of scope here, per §4.6.
func Run(root string) (Result, error) {
	addrs, err := discoverLooseAddresses(root)
	if err != nil {
		return Result{}, err
	}

	loaded, err := loadConcurrently(root, addrs)
	if err != nil {
		return Result{}, err
	}

	pid := os.Getpid()
	tmpDir := storepath.TmpPath(root)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return Result{}, errors.Wrapf(err, "compact: could not create tmp dir %s", tmpDir)
	}

	tmpPackPath := filepath.Join(tmpDir, "tmp-"+strconv.Itoa(pid)+"-pack")
	tmpIdxPath := filepath.Join(tmpDir, "tmp-"+strconv.Itoa(pid)+"-idx")

	entries, err := writePack(tmpPackPath, loaded)
	if err != nil {
		return Result{}, err
	}

	idx := packfile.BuildIndex(entries)
	if err := packfile.WriteIndexFile(tmpIdxPath, idx); err != nil {
		return Result{}, errors.Wrapf(err, "compact: could not write index %s", tmpIdxPath)
	}

	packDir := filepath.Join(root, storepath.PackDir)
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		return Result{}, errors.Wrapf(err, "compact: could not create pack dir %s", packDir)
	}

	name := strconv.Itoa(pid)
	finalPackPath, finalIdxPath := storepath.PackPath(root, name)

	if err := os.Rename(tmpPackPath, finalPackPath); err != nil {
		return Result{}, errors.Wrap(err, "compact: could not publish pack file")
	}
	if err := os.Rename(tmpIdxPath, finalIdxPath); err != nil {
		return Result{}, errors.Wrap(err, "compact: could not publish index file")
	}

	return Result{PackPath: finalPackPath, IndexPath: finalIdxPath, Count: len(entries)}, nil
}

// discoverLooseAddresses walks root's two-character shard directories
// and returns the full address of every loose object found. Entries
// whose name is not exactly two valid hex characters are ignored, per
// §4.6 step 1.
func discoverLooseAddresses(root string) ([]envelope.Address, error) {
	topEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "compact: could not list %s", root)
	}

	var addrs []envelope.Address
	for _, shard := range topEntries {
		if !shard.IsDir() || !storepath.IsShardDir(shard.Name()) {
			continue
		}

		shardPath := filepath.Join(root, shard.Name())
		files, err := os.ReadDir(shardPath)
		if err != nil {
			return nil, errors.Wrapf(err, "compact: could not list shard %s", shardPath)
		}

		for _, f := range files {
			if f.IsDir() {
				continue
			}
			hexAddr := shard.Name() + f.Name()
			raw, err := hex.DecodeString(hexAddr)
			if err != nil {
				continue
			}
			addr, err := envelope.NewAddressFromBytes(raw)
			if err != nil {
				continue
			}
			addrs = append(addrs, addr)
		}
	}
	return addrs, nil
}

// loadConcurrently reads every loose object named in addrs, bounding
// in-flight reads to MaxInFlight.
func loadConcurrently(root string, addrs []envelope.Address) ([]envelope.Envelope, error) {
	sem := make(chan struct{}, MaxInFlight)
	envs := make([]envelope.Envelope, len(addrs))
	errs := make([]error, len(addrs))

	var wg sync.WaitGroup
	for i, addr := range addrs {
		i, addr := i, addr
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			env, err := readLoose(root, addr)
			envs[i] = env
			errs[i] = err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return envs, nil
}

// readLoose reads and inflates a single loose object file directly,
// independent of the loose package's Store type, since compaction
// operates purely on the filesystem layout.
func readLoose(root string, addr envelope.Address) (env envelope.Envelope, err error) {
	hex := addr.String()
	path := storepath.LoosePath(root, hex)

	f, err := os.Open(path)
	if err != nil {
		return envelope.Envelope{}, errors.Wrapf(err, "compact: could not open loose object %s", hex)
	}
	defer errutil.Close(f, &err)

	zr, err := zlib.NewReader(f)
	if err != nil {
		return envelope.Envelope{}, errors.Wrapf(err, "compact: could not inflate loose object %s", hex)
	}
	defer errutil.Close(zr, &err)

	raw, err := io.ReadAll(zr)
	if err != nil {
		return envelope.Envelope{}, errors.Wrapf(err, "compact: could not read loose object %s", hex)
	}

	env, err = loose.DecodeFramed(raw)
	if err != nil {
		return envelope.Envelope{}, errors.Wrapf(err, "compact: could not decode loose object %s", hex)
	}
	return env, nil
}

func writePack(path string, envs []envelope.Envelope) ([]packfile.Entry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o444)
	if err != nil {
		return nil, errors.Wrapf(err, "compact: could not create temp pack %s", path)
	}
	defer f.Close()

	w := packfile.NewWriter(f)
	if err := w.WriteHeader(uint64(len(envs))); err != nil {
		return nil, err
	}

	entries := make([]packfile.Entry, 0, len(envs))
	for _, env := range envs {
		offset, err := w.WriteRecord(env)
		if err != nil {
			return nil, errors.Wrapf(err, "compact: could not write record for %s", env.Address())
		}
		entries = append(entries, packfile.Entry{Address: env.Address(), Offset: offset})
	}
	return entries, nil
}
