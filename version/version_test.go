package version_test

import (
	"testing"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	m := version.Manifest{
		Entries: []version.Entry{
			{Path: "package.json", Address: envelope.New(envelope.TagBlob, []byte("{}")).Address()},
			{Path: "index.js", Address: envelope.New(envelope.TagBlob, []byte("console.log(1)")).Address()},
			{Path: "lib/helper.js", Address: envelope.New(envelope.TagBlob, []byte("module.exports={}")).Address()},
		},
	}

	got, err := version.Decode(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestManifestEmpty(t *testing.T) {
	t.Parallel()

	m := version.Manifest{}
	got, err := version.Decode(m.Encode())
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestManifestPreservesOrder(t *testing.T) {
	t.Parallel()

	m := version.Manifest{
		Entries: []version.Entry{
			{Path: "z.js", Address: envelope.New(envelope.TagBlob, []byte("z")).Address()},
			{Path: "a.js", Address: envelope.New(envelope.TagBlob, []byte("a")).Address()},
		},
	}

	got, err := version.Decode(m.Encode())
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "z.js", got.Entries[0].Path)
	assert.Equal(t, "a.js", got.Entries[1].Path)
}

func TestDecodeRejectsCountExceedingBuffer(t *testing.T) {
	t.Parallel()

	_, err := version.Decode([]byte{0xFF, 0x7F})
	assert.Error(t, err)
}
