package relay

import "context"

// Envelope is one authenticated inbound message. Err is set when the frame
// arrived from Sender but its payload could not be decrypted; consumers are
// expected to drop such envelopes.
type Envelope struct {
	Sender    Identity
	Plaintext []byte
	Err       error
}

// Channel is the boundary to the external relay transport. Subscribe yields
// a stream of envelopes until the connection closes or ctx is cancelled;
// Publish seals plaintext for one recipient and sends it.
type Channel interface {
	Subscribe(ctx context.Context) (<-chan Envelope, error)
	Publish(ctx context.Context, recipient Identity, plaintext []byte) error
	Close() error
}
