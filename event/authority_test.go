package event_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/entropic-dev/eos/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthoritySetAddRemove(t *testing.T) {
	t.Parallel()

	s := event.NewAuthoritySet()
	require.NoError(t, s.Add("alice", "pk-a"))
	assert.True(t, s.Has("alice"))

	require.NoError(t, s.Remove("alice"))
	assert.False(t, s.Has("alice"))
}

func TestAuthoritySetRejectsConflictingKey(t *testing.T) {
	t.Parallel()

	s := event.NewAuthoritySet()
	require.NoError(t, s.Add("alice", "pk-a"))
	err := s.Add("alice", "pk-b")
	assert.ErrorIs(t, err, event.ErrAuthorityNameConflict)
}

func TestAuthoritySetSameKeyReaddIsNotAConflict(t *testing.T) {
	t.Parallel()

	s := event.NewAuthoritySet()
	require.NoError(t, s.Add("alice", "pk-a"))
	assert.NoError(t, s.Add("alice", "pk-a"))
}

func TestAuthoritySetRemoveUnknownFails(t *testing.T) {
	t.Parallel()

	s := event.NewAuthoritySet()
	err := s.Remove("ghost")
	assert.ErrorIs(t, err, event.ErrRemovedAuthorityDoesNotExist)
}

func TestAuthoritySetApplyReplaysClaims(t *testing.T) {
	t.Parallel()

	_, sk, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ev, err := event.NewBuilder().
		Claim(event.AuthorityAdd{PublicKey: "pk-a", Name: "alice"}).
		Claim(event.AuthorityAdd{PublicKey: "pk-b", Name: "bob"}).
		Sign("root", sk, nil)
	require.NoError(t, err)

	s := event.NewAuthoritySet()
	require.NoError(t, s.Apply(ev))
	assert.True(t, s.Has("alice"))
	assert.True(t, s.Has("bob"))

	removal, err := event.NewBuilder().
		Claim(event.AuthorityRemove{Name: "alice"}).
		Sign("root", sk, nil)
	require.NoError(t, err)

	require.NoError(t, s.Apply(removal))
	assert.False(t, s.Has("alice"))
	assert.True(t, s.Has("bob"))
}
