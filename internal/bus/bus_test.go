package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	vending "vending_control"
	"vending_control/internal/command"
	"vending_control/internal/logger"
	"vending_control/internal/relay"
)

// fakeChannel replays a scripted stream of envelopes and records publishes.
type fakeChannel struct {
	envelopes []relay.Envelope
	published map[relay.Identity][][]byte
}

func (f *fakeChannel) Subscribe(ctx context.Context) (<-chan relay.Envelope, error) {
	out := make(chan relay.Envelope, len(f.envelopes))
	for _, env := range f.envelopes {
		out <- env
	}
	close(out)
	return out, nil
}

func (f *fakeChannel) Publish(_ context.Context, recipient relay.Identity, plaintext []byte) error {
	if f.published == nil {
		f.published = make(map[relay.Identity][][]byte)
	}
	f.published[recipient] = append(f.published[recipient], plaintext)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func testIdentity(t *testing.T) relay.Identity {
	t.Helper()
	_, id, err := relay.GenerateKeys()
	if err != nil {
		t.Fatalf("generate keys: %v", err)
	}
	return id
}

func runBus(t *testing.T, b *Bus) []command.AdminCommand {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	var got []command.AdminCommand
	for cmd := range b.Commands() {
		got = append(got, cmd)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("bus run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("bus did not stop")
	}
	return got
}

func TestNewAuthority_RequiresAdmins(t *testing.T) {
	if _, err := NewAuthority(nil); !errors.Is(err, ErrNoAdmins) {
		t.Fatalf("expected ErrNoAdmins, got %v", err)
	}
}

func TestAuthority_Decode(t *testing.T) {
	admin := testIdentity(t)
	stranger := testIdentity(t)
	auth, err := NewAuthority([]relay.Identity{admin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("trusted sender, valid command", func(t *testing.T) {
		cmd, err := auth.Decode(relay.Envelope{Sender: admin, Plaintext: []byte(`{"type":"Status"}`)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Kind != command.KindStatus {
			t.Fatalf("expected Status, got %s", cmd.Kind)
		}
	})

	t.Run("untrusted sender", func(t *testing.T) {
		_, err := auth.Decode(relay.Envelope{Sender: stranger, Plaintext: []byte(`{"type":"Status"}`)})
		if !errors.Is(err, ErrUntrustedSender) {
			t.Fatalf("expected ErrUntrustedSender, got %v", err)
		}
	})

	t.Run("decryption failure", func(t *testing.T) {
		_, err := auth.Decode(relay.Envelope{Sender: admin, Err: relay.ErrDecrypt})
		if !errors.Is(err, relay.ErrDecrypt) {
			t.Fatalf("expected ErrDecrypt, got %v", err)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		if _, err := auth.Decode(relay.Envelope{Sender: admin, Plaintext: []byte(`open sesame`)}); err == nil {
			t.Fatalf("expected decode error")
		}
	})
}

func TestBus_ForwardsOnlyAuthenticatedCommands(t *testing.T) {
	admin := testIdentity(t)
	stranger := testIdentity(t)
	auth, _ := NewAuthority([]relay.Identity{admin})

	ch := &fakeChannel{envelopes: []relay.Envelope{
		{Sender: stranger, Plaintext: []byte(`{"type":"Status"}`)},     // dropped: untrusted
		{Sender: admin, Err: relay.ErrDecrypt},                         // dropped: crypto failure
		{Sender: admin, Plaintext: []byte(`not a command`)},            // dropped: malformed
		{Sender: admin, Plaintext: []byte(`{"type":"RequestAdminState"}`)},
		{Sender: admin, Plaintext: []byte(`{"type":"RemoveItem","data":3}`)},
	}}

	got := runBus(t, New(logger.Nop(), ch, auth, 0))
	if len(got) != 2 {
		t.Fatalf("expected 2 forwarded commands, got %d", len(got))
	}
	if got[0].Kind != command.KindRequestAdminState || got[1].Kind != command.KindRemoveItem {
		t.Fatalf("unexpected commands: %+v", got)
	}
	if got[1].RemoveItem != 3 {
		t.Fatalf("expected RemoveItem id=3, got %d", got[1].RemoveItem)
	}
}

func TestBus_StopsAfterShutdownCommand(t *testing.T) {
	admin := testIdentity(t)
	auth, _ := NewAuthority([]relay.Identity{admin})

	ch := &fakeChannel{envelopes: []relay.Envelope{
		{Sender: admin, Plaintext: []byte(`{"type":"Shutdown"}`)},
		{Sender: admin, Plaintext: []byte(`{"type":"Status"}`)}, // never read
	}}

	got := runBus(t, New(logger.Nop(), ch, auth, 0))
	if len(got) != 1 || got[0].Kind != command.KindShutdown {
		t.Fatalf("expected only the Shutdown command, got %+v", got)
	}
}

func TestBroadcaster_PublishesToEveryAdmin(t *testing.T) {
	first := testIdentity(t)
	second := testIdentity(t)
	ch := &fakeChannel{}
	b := NewBroadcaster(logger.Nop(), ch, []relay.Identity{first, second})

	snap := vending.MachineSnapshot{
		UnderAdmin: true,
		State:      vending.StateAdminMode,
		Items:      []vending.Item{{ID: 1, Name: "Soda", Price: 100, Count: 5}},
	}
	b.Broadcast(context.Background(), snap)

	for _, admin := range []relay.Identity{first, second} {
		msgs := ch.published[admin]
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message for %s, got %d", admin, len(msgs))
		}
		var got vending.MachineSnapshot
		if err := json.Unmarshal(msgs[0], &got); err != nil {
			t.Fatalf("broadcast payload not valid JSON: %v", err)
		}
		if !got.UnderAdmin || got.State != vending.StateAdminMode || len(got.Items) != 1 {
			t.Fatalf("unexpected snapshot: %+v", got)
		}
	}
}
