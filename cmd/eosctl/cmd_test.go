package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/entropic-dev/eos/env"
	"github.com/entropic-dev/eos/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlags(t *testing.T) *globalFlags {
	t.Helper()
	return &globalFlags{store: t.TempDir(), env: env.FromKVList(nil)}
}

func TestInitCreatesStoreLayout(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	out := &bytes.Buffer{}
	require.NoError(t, initCmd(out, cfg))

	assert.DirExists(t, filepath.Join(cfg.store, "pack"))
	assert.DirExists(t, filepath.Join(cfg.store, "tmp"))
	assert.Contains(t, out.String(), "initialized empty store")
}

func TestAddThenCatRoundTrips(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	require.NoError(t, initCmd(bytes.NewBuffer(nil), cfg))

	filePath := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("hello, registry"), 0o644))

	addOut := &bytes.Buffer{}
	require.NoError(t, addCmd(addOut, cfg, filePath))
	addr := trimNewline(addOut.String())

	catOut := &bytes.Buffer{}
	require.NoError(t, catCmd(catOut, cfg, addr, false))
	assert.Equal(t, "hello, registry", catOut.String())

	typeOut := &bytes.Buffer{}
	require.NoError(t, catCmd(typeOut, cfg, addr, true))
	assert.Equal(t, "blob\n", typeOut.String())
}

func TestCatMissingAddressErrors(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	require.NoError(t, initCmd(bytes.NewBuffer(nil), cfg))

	zero := "0000000000000000000000000000000000000000000000000000000000000000"
	err := catCmd(bytes.NewBuffer(nil), cfg, zero[:64], false)
	assert.Error(t, err)
}

func TestSignVerifyAndLog(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	require.NoError(t, initCmd(bytes.NewBuffer(nil), cfg))

	dir := t.TempDir()
	pub, sk, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	pubPath := filepath.Join(dir, "id.pub")
	skPath := filepath.Join(dir, "id.key")
	require.NoError(t, keys.WriteKeyPair(pubPath, pub, skPath, sk))

	signOut := &bytes.Buffer{}
	require.NoError(t, signCmd(signOut, cfg, signOpts{
		signatory: "alice",
		keyPath:   skPath,
		claims:    []string{"yank:1.0.0:cve"},
	}))
	addr := trimNewline(signOut.String())

	verifyOut := &bytes.Buffer{}
	require.NoError(t, verifyCmd(verifyOut, cfg, addr, pubPath))
	assert.Equal(t, "ok\n", verifyOut.String())

	logOut := &bytes.Buffer{}
	require.NoError(t, logCmd(logOut, cfg, addr))
	assert.Contains(t, logOut.String(), "signatory=alice")
	assert.Contains(t, logOut.String(), addr)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	require.NoError(t, initCmd(bytes.NewBuffer(nil), cfg))

	_, sk, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	otherPub, _, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	dir := t.TempDir()
	skPath := filepath.Join(dir, "id.key")
	otherPubPath := filepath.Join(dir, "other.pub")
	require.NoError(t, os.WriteFile(skPath, sk, 0o400))
	require.NoError(t, os.WriteFile(otherPubPath, otherPub, 0o444))

	signOut := &bytes.Buffer{}
	require.NoError(t, signCmd(signOut, cfg, signOpts{signatory: "bob", keyPath: skPath}))
	addr := trimNewline(signOut.String())

	err = verifyCmd(bytes.NewBuffer(nil), cfg, addr, otherPubPath)
	assert.Error(t, err)
}

func TestSignRejectsUnknownSignatoryWhenAuthoritiesConfigured(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	require.NoError(t, initCmd(bytes.NewBuffer(nil), cfg))

	_, sk, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	dir := t.TempDir()
	skPath := filepath.Join(dir, "id.key")
	require.NoError(t, os.WriteFile(skPath, sk, 0o400))

	authPath := filepath.Join(dir, "authorities.ini")
	require.NoError(t, os.WriteFile(authPath, []byte("[someone-else]\npublicKey = x\n"), 0o644))

	err = signCmd(bytes.NewBuffer(nil), cfg, signOpts{
		signatory:     "bob",
		keyPath:       skPath,
		authorityFile: authPath,
	})
	assert.Error(t, err)
}

func TestCompactFoldsLooseObjectsIntoPack(t *testing.T) {
	t.Parallel()

	cfg := newTestFlags(t)
	require.NoError(t, initCmd(bytes.NewBuffer(nil), cfg))

	filePath := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("compact me"), 0o644))

	addOut := &bytes.Buffer{}
	require.NoError(t, addCmd(addOut, cfg, filePath))
	addr := trimNewline(addOut.String())

	compactOut := &bytes.Buffer{}
	require.NoError(t, compactCmd(compactOut, cfg))
	assert.Contains(t, compactOut.String(), "1 objects")

	catOut := &bytes.Buffer{}
	require.NoError(t, catCmd(catOut, cfg, addr, false))
	assert.Equal(t, "compact me", catOut.String())
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
