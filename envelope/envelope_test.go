package envelope_test

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/entropic-dev/eos/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentAddressScenario(t *testing.T) {
	t.Parallel()

	// Concrete end-to-end scenario 1 from the spec: Add Blob("hello world").
	env := envelope.New(envelope.TagBlob, []byte("hello world"))
	assert.Equal(t, "blob 11\x00", env.Header())

	want := sha256.Sum256([]byte("blob 11\x00hello world"))
	assert.Equal(t, want[:], env.Address().Bytes())
}

func TestTagStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tag := range []envelope.Tag{envelope.TagBlob, envelope.TagVersion, envelope.TagEvent} {
		parsed, err := envelope.TagFromString(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
	}
}

func TestTagFromStringUnknown(t *testing.T) {
	t.Parallel()

	_, err := envelope.TagFromString("xxxx")
	assert.ErrorIs(t, err, envelope.ErrUnknownTag)
}

func TestAddressEqualImpliesByteEqualEnvelopes(t *testing.T) {
	t.Parallel()

	a := envelope.New(envelope.TagBlob, []byte("same content"))
	b := envelope.New(envelope.TagBlob, []byte("same content"))
	assert.Equal(t, a.Address(), b.Address())

	c := envelope.New(envelope.TagVersion, []byte("same content"))
	assert.NotEqual(t, a.Address(), c.Address())
}

func TestNewAddressFromBytes(t *testing.T) {
	t.Parallel()

	raw := make([]byte, envelope.Size)
	for i := range raw {
		raw[i] = byte(i)
	}
	addr, err := envelope.NewAddressFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", raw), addr.String())

	_, err = envelope.NewAddressFromBytes(raw[:10])
	assert.Error(t, err)
}
