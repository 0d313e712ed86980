// Package keys reads and writes raw Ed25519 key material to and from
// files. It deliberately does not parse ssh-key or PEM formats — per
// spec.md §1, that is a collaborator's concern, not the core's.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"

	"golang.org/x/xerrors"
)

// GenerateKeyPair creates a fresh Ed25519 key pair.
func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, xerrors.Errorf("keys: could not generate key pair: %w", err)
	}
	return pub, priv, nil
}

// LoadPublicKey reads a raw, unencoded ed25519.PublicKey from path.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("keys: could not read public key %s: %w", path, err)
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, xerrors.Errorf("keys: %s is %d bytes, want %d", path, len(data), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(data), nil
}

// LoadSecretKey reads a raw, unencoded ed25519.PrivateKey from path.
func LoadSecretKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("keys: could not read secret key %s: %w", path, err)
	}
	if len(data) != ed25519.PrivateKeySize {
		return nil, xerrors.Errorf("keys: %s is %d bytes, want %d", path, len(data), ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(data), nil
}

// WriteKeyPair writes pub and sk to pubPath and skPath, raw and
// unencoded. The secret key file is written with owner-only
// permissions.
func WriteKeyPair(pubPath string, pub ed25519.PublicKey, skPath string, sk ed25519.PrivateKey) error {
	if err := os.WriteFile(pubPath, pub, 0o444); err != nil {
		return xerrors.Errorf("keys: could not write public key %s: %w", pubPath, err)
	}
	if err := os.WriteFile(skPath, sk, 0o400); err != nil {
		return xerrors.Errorf("keys: could not write secret key %s: %w", skPath, err)
	}
	return nil
}
