package bus

import (
	"context"
	"encoding/json"

	vending "vending_control"
	"vending_control/internal/logger"
	"vending_control/internal/relay"
)

// Broadcaster publishes status snapshots to every trusted admin identity
// after state-mutating operations. Publish failures are logged and do not
// interrupt the controller.
type Broadcaster struct {
	log    *logger.Logger
	ch     relay.Channel
	admins []relay.Identity
}

func NewBroadcaster(log *logger.Logger, ch relay.Channel, admins []relay.Identity) *Broadcaster {
	return &Broadcaster{log: log, ch: ch, admins: admins}
}

// Broadcast sends the snapshot document to each admin.
func (b *Broadcaster) Broadcast(ctx context.Context, snap vending.MachineSnapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		b.log.Errorw("status_marshal_failed", "err", err)
		return
	}
	for _, admin := range b.admins {
		if err := b.ch.Publish(ctx, admin, payload); err != nil {
			b.log.Warnw("status_publish_failed", "admin", admin.String(), "err", err)
		}
	}
}
