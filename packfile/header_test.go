package packfile_test

import (
	"bytes"
	"testing"

	"github.com/entropic-dev/eos/packfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	sizes := []uint64{0, 1, 0xF, 0x10, 0xFF, 0x1000, 1 << 20, 1 << 40}
	types := []packfile.Type{packfile.TypeBlob, packfile.TypeEvent, packfile.TypeVersion}

	for _, typ := range types {
		for _, size := range sizes {
			encoded := packfile.EncodeHeader(typ, size)
			r := bytes.NewReader(encoded)
			gotType, gotSize, n, err := packfile.DecodeHeader(r)
			require.NoError(t, err)
			assert.Equal(t, typ, gotType)
			assert.Equal(t, size, gotSize)
			assert.Equal(t, len(encoded), n)
		}
	}
}

func TestHeaderSmallSizeIsOneByte(t *testing.T) {
	t.Parallel()

	encoded := packfile.EncodeHeader(packfile.TypeBlob, 5)
	assert.Len(t, encoded, 1)
}

func TestHeaderZeroIsOneByte(t *testing.T) {
	t.Parallel()

	encoded := packfile.EncodeHeader(packfile.TypeEvent, 0)
	assert.Len(t, encoded, 1)
}
