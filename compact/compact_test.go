package compact_test

import (
	"os"
	"testing"

	"github.com/entropic-dev/eos/compact"
	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/loose"
	"github.com/entropic-dev/eos/packfile"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactProducesReadablePack(t *testing.T) {
	root := t.TempDir()

	// Write loose objects through the real OS filesystem, since
	// compaction reads directly off disk rather than through an
	// afero.Fs.
	store := loose.New(root, afero.NewOsFs())

	want := make([]envelope.Envelope, 0, 10)
	for i := 0; i < 10; i++ {
		env := envelope.New(envelope.TagBlob, []byte{byte(i), byte(i), byte(i)})
		added, err := store.Add(env)
		require.NoError(t, err)
		require.True(t, added)
		want = append(want, env)
	}

	result, err := compact.Run(root)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Count)

	pack, err := packfile.Open(result.PackPath, result.IndexPath)
	require.NoError(t, err)
	defer pack.Close()

	for _, env := range want {
		got, found, err := pack.Get(env.Address())
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, env.Payload(), got.Payload())
	}
}

func TestCompactLeavesLooseObjectsInPlace(t *testing.T) {
	root := t.TempDir()
	store := loose.New(root, afero.NewOsFs())

	env := envelope.New(envelope.TagBlob, []byte("still here"))
	_, err := store.Add(env)
	require.NoError(t, err)

	_, err = compact.Run(root)
	require.NoError(t, err)

	got, found, err := store.Get(env.Address())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, env.Payload(), got.Payload())
}

func TestCompactOnEmptyStoreProducesEmptyPack(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(root, 0o755))

	result, err := compact.Run(root)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)

	pack, err := packfile.Open(result.PackPath, result.IndexPath)
	require.NoError(t, err)
	defer pack.Close()
	assert.Equal(t, 0, pack.Count())
}
