package relay

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

const nonceSize = 24

// ErrDecrypt marks a frame whose payload could not be opened with the
// machine's key and the claimed sender's identity.
var ErrDecrypt = errors.New("cannot decrypt payload")

// seal encrypts plaintext for recipient, authenticated by sender's secret key.
func seal(plaintext []byte, recipient Identity, sender SecretKey) (nonce [nonceSize]byte, sealed []byte, err error) {
	if _, err = io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, nil, fmt.Errorf("generate nonce: %w", err)
	}
	peer := [keySize]byte(recipient)
	priv := [keySize]byte(sender)
	sealed = box.Seal(nil, plaintext, &nonce, &peer, &priv)
	return nonce, sealed, nil
}

// open decrypts a sealed payload from the claimed sender. Failure means the
// payload was not produced for us by that identity.
func open(sealed []byte, nonce [nonceSize]byte, sender Identity, recipient SecretKey) ([]byte, error) {
	peer := [keySize]byte(sender)
	priv := [keySize]byte(recipient)
	plaintext, ok := box.Open(nil, sealed, &nonce, &peer, &priv)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
