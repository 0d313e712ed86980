package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/entropic-dev/eos/config"
	"github.com/entropic-dev/eos/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	e := env.FromKVList(nil)
	cfg, err := config.Load(e, config.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, ".eos", cfg.StoreRoot)
	assert.Equal(t, "pack", cfg.PackName)
	assert.Equal(t, 1024, cfg.MaxInFlight)
	assert.Equal(t, "", cfg.AuthorityFile)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{
		"EOS_STORE_ROOT=/srv/eos",
		"EOS_MAX_INFLIGHT=64",
		"EOS_PACK_NAME=snapshot",
	})
	cfg, err := config.Load(e, config.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/srv/eos", cfg.StoreRoot)
	assert.Equal(t, 64, cfg.MaxInFlight)
	assert.Equal(t, "snapshot", cfg.PackName)
}

func TestLoadOptionsOverrideEnvironment(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{"EOS_STORE_ROOT=/srv/eos"})
	cfg, err := config.Load(e, config.LoadOptions{StoreRoot: "/opt/eos"})
	require.NoError(t, err)
	assert.Equal(t, "/opt/eos", cfg.StoreRoot)
}

func TestLoadRejectsNonNumericMaxInFlight(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{"EOS_MAX_INFLIGHT=banana"})
	_, err := config.Load(e, config.LoadOptions{})
	assert.Error(t, err)
}

func TestLoadRejectsZeroMaxInFlight(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{"EOS_MAX_INFLIGHT=0"})
	_, err := config.Load(e, config.LoadOptions{})
	assert.Error(t, err)
}

func TestLooseRootAndPackRoot(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{"EOS_STORE_ROOT=/srv/eos"})
	cfg, err := config.Load(e, config.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/srv/eos", cfg.LooseRoot())
	assert.Equal(t, "/srv/eos", cfg.PackRoot())
}

func TestLoadAuthoritySetWithoutFileIsEmptyNotNil(t *testing.T) {
	t.Parallel()

	e := env.FromKVList(nil)
	cfg, err := config.Load(e, config.LoadOptions{})
	require.NoError(t, err)

	set, err := cfg.LoadAuthoritySet()
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 0, set.Len())
}

func TestLoadAuthoritySetFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "authorities.ini")
	contents := "[alice]\npublicKey = alice-pubkey-material\n\n[bob]\npublicKey = bob-pubkey-material\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	e := env.FromKVList([]string{"EOS_AUTHORITY_FILE=" + path})
	cfg, err := config.Load(e, config.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.AuthorityFile)

	set, err := cfg.LoadAuthoritySet()
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("alice"))
	assert.True(t, set.Has("bob"))
}

func TestLoadAuthoritySetRejectsMissingFile(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{"EOS_AUTHORITY_FILE=/does/not/exist.ini"})
	cfg, err := config.Load(e, config.LoadOptions{})
	require.NoError(t, err)

	_, err = cfg.LoadAuthoritySet()
	assert.Error(t, err)
}
