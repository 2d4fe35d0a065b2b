// Package relay provides the authenticated message channel between the
// machine and its operators: identities are curve25519 public keys, payloads
// are NaCl box sealed, and frames travel over a websocket relay.
package relay

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

const keySize = 32

// Identity is a public key identifying one party on the relay.
type Identity [keySize]byte

// SecretKey is the private half of an identity.
type SecretKey [keySize]byte

// ParseIdentity decodes a 64-character hex public key.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	if len(raw) != keySize {
		return Identity{}, fmt.Errorf("invalid public key %q: expected %d bytes, got %d", s, keySize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// ParseSecretKey decodes a 64-character hex private key.
func ParseSecretKey(s string) (SecretKey, error) {
	var key SecretKey
	raw, err := hex.DecodeString(s)
	if err != nil {
		return SecretKey{}, fmt.Errorf("invalid secret key: %w", err)
	}
	if len(raw) != keySize {
		return SecretKey{}, fmt.Errorf("invalid secret key: expected %d bytes, got %d", keySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// GenerateKeys creates a fresh keypair.
func GenerateKeys() (SecretKey, Identity, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return SecretKey{}, Identity{}, fmt.Errorf("generate keypair: %w", err)
	}
	return SecretKey(*priv), Identity(*pub), nil
}

// Public derives the identity belonging to the secret key.
func (k SecretKey) Public() (Identity, error) {
	raw, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		return Identity{}, fmt.Errorf("derive public key: %w", err)
	}
	var id Identity
	copy(id[:], raw)
	return id, nil
}

func (id Identity) String() string { return hex.EncodeToString(id[:]) }
