package readutil_test

import (
	"testing"

	"github.com/entropic-dev/eos/internal/readutil"
	"github.com/stretchr/testify/assert"
)

func TestReadTo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte("blob"), readutil.ReadTo([]byte("blob 11\x00hello"), ' '))
	assert.Nil(t, readutil.ReadTo([]byte("noseparator"), ' '))
}
