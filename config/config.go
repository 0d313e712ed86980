// Package config resolves the on-disk and environment-variable
// configuration of a store: its root directory, in-flight operation
// cap, pack file naming, and an optional authority bootstrap file.
package config

import (
	"path/filepath"

	"github.com/entropic-dev/eos/env"
	"github.com/entropic-dev/eos/event"
	"golang.org/x/xerrors"
)

const (
	envStoreRoot     = "EOS_STORE_ROOT"
	envMaxInFlight   = "EOS_MAX_INFLIGHT"
	envPackName      = "EOS_PACK_NAME"
	envAuthorityFile = "EOS_AUTHORITY_FILE"

	defaultStoreRoot   = ".eos"
	defaultPackName    = "pack"
	defaultMaxInFlight = 1024
)

// Config holds the resolved settings for a store.
type Config struct {
	// StoreRoot is the directory holding the loose shard directories
	// and the pack/ and tmp/ subdirectories.
	// Maps to $EOS_STORE_ROOT. Defaults to ".eos".
	StoreRoot string
	// MaxInFlight is the resolved in-flight operation cap. Compaction
	// does not read it: compact.Run bounds its concurrent loose reads
	// with its own compact.MaxInFlight constant.
	// Maps to $EOS_MAX_INFLIGHT. Defaults to 1024.
	MaxInFlight int
	// PackName is a resolved pack base name (without extension).
	// Compaction does not read it: compact.Run names each pack/index
	// pair after the current process id.
	// Maps to $EOS_PACK_NAME. Defaults to "pack".
	PackName string
	// AuthorityFile, if set, points to an INI file bootstrapping the
	// initial AuthoritySet. Maps to $EOS_AUTHORITY_FILE. Empty by
	// default, meaning no bootstrap authorities.
	AuthorityFile string
}

// LoadOptions overrides what would otherwise be resolved from the
// environment. Any non-zero field here wins over the corresponding
// environment variable.
type LoadOptions struct {
	StoreRoot     string
	MaxInFlight   int
	PackName      string
	AuthorityFile string
}

// Load resolves a Config from e, with any LoadOptions field taking
// precedence over its environment-variable counterpart.
func Load(e *env.Env, opts LoadOptions) (*Config, error) {
	cfg := &Config{
		StoreRoot:     e.GetDefault(envStoreRoot, defaultStoreRoot),
		PackName:      e.GetDefault(envPackName, defaultPackName),
		MaxInFlight:   defaultMaxInFlight,
		AuthorityFile: e.Get(envAuthorityFile),
	}

	if raw := e.Get(envMaxInFlight); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			return nil, xerrors.Errorf("config: invalid %s=%q: %w", envMaxInFlight, raw, err)
		}
		cfg.MaxInFlight = n
	}

	if opts.StoreRoot != "" {
		cfg.StoreRoot = opts.StoreRoot
	}
	if opts.PackName != "" {
		cfg.PackName = opts.PackName
	}
	if opts.MaxInFlight != 0 {
		cfg.MaxInFlight = opts.MaxInFlight
	}
	if opts.AuthorityFile != "" {
		cfg.AuthorityFile = opts.AuthorityFile
	}

	cfg.StoreRoot = filepath.Clean(cfg.StoreRoot)
	return cfg, nil
}

// LooseRoot returns the directory the loose store should use. Per
// internal/storepath's layout, this is the store root itself: shard
// directories sit directly under it, alongside pack/ and tmp/.
func (c *Config) LooseRoot() string {
	return c.StoreRoot
}

// PackRoot returns the directory compaction and pack discovery should
// use. It is the store root itself: packfile.LoadAll and compact.Run
// both expect a "pack" subdirectory directly under it.
func (c *Config) PackRoot() string {
	return c.StoreRoot
}

// LoadAuthoritySet bootstraps an AuthoritySet from c.AuthorityFile, an
// INI file with one section per authority name and a "publicKey" key
// holding the raw hex-free base material expected by
// event.AuthoritySet.Add. Returns an empty, non-nil set if
// c.AuthorityFile is unset.
func (c *Config) LoadAuthoritySet() (*event.AuthoritySet, error) {
	set := event.NewAuthoritySet()
	if c.AuthorityFile == "" {
		return set, nil
	}

	cfg, err := loadINI(c.AuthorityFile)
	if err != nil {
		return nil, xerrors.Errorf("config: could not load authority file %s: %w", c.AuthorityFile, err)
	}

	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == "DEFAULT" {
			continue
		}
		key := section.Key("publicKey").String()
		if key == "" {
			continue
		}
		if err := set.Add(name, key); err != nil {
			return nil, xerrors.Errorf("config: could not add authority %s: %w", name, err)
		}
	}

	return set, nil
}

func parsePositiveInt(raw string) (int, error) {
	n := 0
	if raw == "" {
		return 0, xerrors.New("empty value")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, xerrors.Errorf("not a positive integer: %q", raw)
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return 0, xerrors.New("must be greater than zero")
	}
	return n, nil
}
