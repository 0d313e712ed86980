package event_test

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objs map[envelope.Address]envelope.Envelope
}

func newMemStore() *memStore {
	return &memStore{objs: make(map[envelope.Address]envelope.Envelope)}
}

func (s *memStore) put(env envelope.Envelope) envelope.Address {
	addr := env.Address()
	s.objs[addr] = env
	return addr
}

func (s *memStore) Get(addr envelope.Address) (envelope.Envelope, bool, error) {
	env, ok := s.objs[addr]
	return env, ok, nil
}

func signedEventEnvelope(t *testing.T, sk ed25519.PrivateKey, at time.Time, parents ...event.ParentAddress) (envelope.Envelope, *event.Event) {
	t.Helper()

	b := event.NewBuilder().At(at)
	for _, p := range parents {
		b.Parent(p)
	}
	ev, err := b.Claim(event.Other{TypeNo: 0x80, Data: []byte("node")}).Sign("root", sk, nil)
	require.NoError(t, err)

	buf, err := ev.MarshalBinary()
	require.NoError(t, err)

	return envelope.New(envelope.TagEvent, buf), ev
}

func TestIteratorYieldsNewestFirst(t *testing.T) {
	t.Parallel()

	_, sk, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := newMemStore()
	base := time.Unix(1700000000, 0).UTC()

	rootEnv, _ := signedEventEnvelope(t, sk, base)
	rootAddr := s.put(rootEnv)

	midEnv, _ := signedEventEnvelope(t, sk, base.Add(time.Hour), event.ParentAddress(rootAddr))
	midAddr := s.put(midEnv)

	tipEnv, _ := signedEventEnvelope(t, sk, base.Add(2*time.Hour), event.ParentAddress(midAddr))
	tipAddr := s.put(tipEnv)

	it, err := event.NewIterator(s, tipAddr)
	require.NoError(t, err)

	addr, _, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tipAddr, addr)

	addr, _, ok, err = it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, midAddr, addr)

	addr, _, ok, err = it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rootAddr, addr)

	_, _, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIteratorVisitsEachAddressOnce(t *testing.T) {
	t.Parallel()

	_, sk, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := newMemStore()
	base := time.Unix(1700000000, 0).UTC()

	rootEnv, _ := signedEventEnvelope(t, sk, base)
	rootAddr := s.put(rootEnv)

	// Two children share the same parent (a diamond); root must be
	// yielded exactly once.
	leftEnv, _ := signedEventEnvelope(t, sk, base.Add(time.Hour), event.ParentAddress(rootAddr))
	leftAddr := s.put(leftEnv)
	rightEnv, _ := signedEventEnvelope(t, sk, base.Add(time.Hour), event.ParentAddress(rootAddr))
	rightAddr := s.put(rightEnv)

	tipEnv, _ := signedEventEnvelope(t, sk, base.Add(2*time.Hour), event.ParentAddress(leftAddr), event.ParentAddress(rightAddr))
	tipAddr := s.put(tipEnv)

	it, err := event.NewIterator(s, tipAddr)
	require.NoError(t, err)

	seen := map[envelope.Address]int{}
	for {
		addr, _, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[addr]++
	}

	assert.Equal(t, 1, seen[rootAddr])
	assert.Equal(t, 1, seen[leftAddr])
	assert.Equal(t, 1, seen[rightAddr])
	assert.Equal(t, 1, seen[tipAddr])
}
