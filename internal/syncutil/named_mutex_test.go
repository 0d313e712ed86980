package syncutil_test

import (
	"testing"

	"github.com/entropic-dev/eos/internal/syncutil"
)

func TestLockUnlockDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	mu := syncutil.NewNamedMutex(8)
	mu.Lock([]byte("a"))
	mu.Unlock([]byte("a"))

	mu.RLock([]byte("b"))
	mu.RLock([]byte("c"))
	mu.RUnlock([]byte("b"))
	mu.RUnlock([]byte("c"))
}

func TestSmallSizeIsBumped(t *testing.T) {
	t.Parallel()

	// must not panic with an out-of-range slot
	mu := syncutil.NewNamedMutex(0)
	mu.Lock([]byte("x"))
	mu.Unlock([]byte("x"))
}
