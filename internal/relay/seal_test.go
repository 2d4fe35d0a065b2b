package relay

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	adminSecret, adminPub, err := GenerateKeys()
	if err != nil {
		t.Fatalf("generate admin keys: %v", err)
	}
	machineSecret, machinePub, err := GenerateKeys()
	if err != nil {
		t.Fatalf("generate machine keys: %v", err)
	}

	plaintext := []byte(`{"type":"Status"}`)
	nonce, sealed, err := seal(plaintext, machinePub, adminSecret)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatalf("sealed payload leaks plaintext")
	}

	got, err := open(sealed, nonce, adminPub, machineSecret)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("expected %q, got %q", plaintext, got)
	}
}

func TestOpen_WrongSenderFails(t *testing.T) {
	adminSecret, _, _ := GenerateKeys()
	machineSecret, machinePub, _ := GenerateKeys()
	_, impostorPub, _ := GenerateKeys()

	nonce, sealed, err := seal([]byte("payload"), machinePub, adminSecret)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	// Claiming the wrong sender identity must not authenticate.
	if _, err := open(sealed, nonce, impostorPub, machineSecret); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
}

func TestParseIdentity(t *testing.T) {
	_, pub, _ := GenerateKeys()
	parsed, err := ParseIdentity(pub.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != pub {
		t.Fatalf("round trip mismatch")
	}
	for _, bad := range []string{"", "zz", "abcd", "not hex at all"} {
		if _, err := ParseIdentity(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSecretKeyPublic(t *testing.T) {
	secret, pub, _ := GenerateKeys()
	derived, err := secret.Public()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if derived != pub {
		t.Fatalf("derived public key does not match generated one")
	}
}
