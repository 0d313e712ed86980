package env_test

import (
	"testing"

	"github.com/entropic-dev/eos/env"
	"github.com/stretchr/testify/assert"
)

func TestFromKVList(t *testing.T) {
	t.Parallel()

	e := env.FromKVList([]string{"EOS_STORE_ROOT=/tmp/store", "MALFORMED"})
	assert.True(t, e.Has("EOS_STORE_ROOT"))
	assert.Equal(t, "/tmp/store", e.Get("EOS_STORE_ROOT"))
	assert.False(t, e.Has("MALFORMED"))
	assert.Equal(t, "", e.Get("MISSING"))
	assert.Equal(t, "fallback", e.GetDefault("MISSING", "fallback"))
}
