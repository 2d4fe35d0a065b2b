// Package bus connects the relay channel to the controller: the authority
// gates inbound messages to trusted admin identities, the bus decodes them
// into commands, and the broadcaster publishes status back out.
package bus

import (
	"errors"
	"fmt"

	"vending_control/internal/command"
	"vending_control/internal/relay"
)

var (
	// ErrNoAdmins is fatal at startup: the machine refuses to run without
	// at least one trusted operator.
	ErrNoAdmins = errors.New("no trusted admin identities configured")

	// ErrUntrustedSender marks a message from an identity outside the
	// trusted set.
	ErrUntrustedSender = errors.New("sender is not a trusted admin")
)

// Authority validates that an inbound envelope originated from a recognized
// admin identity and decodes it into a command. The trusted set is immutable
// after construction.
type Authority struct {
	trusted map[relay.Identity]struct{}
	admins  []relay.Identity
}

// NewAuthority builds the trusted set from the configured identities.
func NewAuthority(admins []relay.Identity) (*Authority, error) {
	if len(admins) == 0 {
		return nil, ErrNoAdmins
	}
	trusted := make(map[relay.Identity]struct{}, len(admins))
	for _, id := range admins {
		trusted[id] = struct{}{}
	}
	return &Authority{trusted: trusted, admins: admins}, nil
}

// Admins returns the configured identities, used for status broadcasts.
func (a *Authority) Admins() []relay.Identity { return a.admins }

// Trusted reports membership in the admin set.
func (a *Authority) Trusted(id relay.Identity) bool {
	_, ok := a.trusted[id]
	return ok
}

// Decode accepts an envelope only if the sender is trusted, decryption
// succeeded upstream, and the payload is a well-formed command. Every failure
// is returned so the bus can log and drop the message; none of them reach
// the controller.
func (a *Authority) Decode(env relay.Envelope) (command.AdminCommand, error) {
	if !a.Trusted(env.Sender) {
		return command.AdminCommand{}, fmt.Errorf("%w: %s", ErrUntrustedSender, env.Sender)
	}
	if env.Err != nil {
		return command.AdminCommand{}, fmt.Errorf("message from %s: %w", env.Sender, env.Err)
	}
	cmd, err := command.Decode(env.Plaintext)
	if err != nil {
		return command.AdminCommand{}, fmt.Errorf("malformed command from %s: %w", env.Sender, err)
	}
	return cmd, nil
}
