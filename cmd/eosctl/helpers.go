package main

import (
	"os"
	"path/filepath"

	"github.com/entropic-dev/eos/composite"
	"github.com/entropic-dev/eos/config"
	"github.com/entropic-dev/eos/internal/storepath"
	"github.com/entropic-dev/eos/loose"
	"github.com/entropic-dev/eos/packfile"
	"github.com/entropic-dev/eos/store"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

func loadConfig(cfg *globalFlags) (*config.Config, error) {
	return config.Load(cfg.env, config.LoadOptions{StoreRoot: cfg.store})
}

// openLoose returns the loose store backing c.
func openLoose(c *config.Config) *loose.Store {
	return loose.New(c.LooseRoot(), afero.NewOsFs())
}

// openReader opens a composite store that reads the loose objects
// written at c's root first, then falls back to every compacted pack
// found under c's pack directory. Callers must call closePacks when
// done to release the mmap'd pack files.
func openReader(c *config.Config) (*composite.Store, []*packfile.Pack, error) {
	packs, err := packfile.LoadAll(c.PackRoot())
	if err != nil {
		return nil, nil, xerrors.Errorf("eosctl: could not load packs: %w", err)
	}

	readers := make([]store.Readable, 0, len(packs)+1)
	readers = append(readers, openLoose(c))
	for _, p := range packs {
		readers = append(readers, p)
	}

	return composite.New(readers...), packs, nil
}

func closePacks(packs []*packfile.Pack) {
	for _, p := range packs {
		_ = p.Close()
	}
}

// ensureStoreDirs creates the directory layout internal/storepath
// expects: the store root itself, plus its pack/ and tmp/
// subdirectories.
func ensureStoreDirs(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return xerrors.Errorf("eosctl: could not create store root %s: %w", root, err)
	}
	if err := os.MkdirAll(filepath.Join(root, storepath.PackDir), 0o755); err != nil {
		return xerrors.Errorf("eosctl: could not create pack dir: %w", err)
	}
	if err := os.MkdirAll(storepath.TmpPath(root), 0o755); err != nil {
		return xerrors.Errorf("eosctl: could not create tmp dir: %w", err)
	}
	return nil
}
