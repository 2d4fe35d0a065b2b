package bus

import (
	"context"

	"vending_control/internal/command"
	"vending_control/internal/logger"
	"vending_control/internal/relay"
)

// DefaultQueueCapacity bounds the command queue between the bus and the
// controller. A full queue blocks the receive loop rather than dropping
// authenticated commands.
const DefaultQueueCapacity = 10

// Bus is the background listener on the relay channel. It authenticates and
// decodes every inbound envelope and forwards accepted commands to its
// single consumer, the controller.
type Bus struct {
	log  *logger.Logger
	ch   relay.Channel
	auth *Authority
	out  chan command.AdminCommand
}

func New(log *logger.Logger, ch relay.Channel, auth *Authority, capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Bus{
		log:  log,
		ch:   ch,
		auth: auth,
		out:  make(chan command.AdminCommand, capacity),
	}
}

// Commands is the queue read by the controller. It is closed when the
// receive loop ends.
func (b *Bus) Commands() <-chan command.AdminCommand { return b.out }

// Run receives until the channel closes, ctx is cancelled, or a Shutdown
// command is decoded. Unauthorized, undecryptable and malformed messages are
// logged and dropped; they never reach the queue.
func (b *Bus) Run(ctx context.Context) error {
	defer close(b.out)

	envelopes, err := b.ch.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-envelopes:
			if !ok {
				b.log.Infow("relay stream closed")
				return nil
			}
			cmd, err := b.auth.Decode(env)
			if err != nil {
				b.log.Warnw("dropping message", "err", err)
				continue
			}
			select {
			case b.out <- cmd:
			case <-ctx.Done():
				return ctx.Err()
			}
			if cmd.Kind == command.KindShutdown {
				b.log.Infow("shutdown command received, stopping listener")
				return nil
			}
		}
	}
}
