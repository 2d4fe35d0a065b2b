package machine

import (
	"context"
	"time"

	vending "vending_control"
	"vending_control/internal/command"
	"vending_control/internal/logger"
	"vending_control/internal/repository"
)

// Timeout policies for an idle admin session.
const (
	TimeoutReset    = "reset"    // cancel back to Listening, keep serving
	TimeoutShutdown = "shutdown" // cancel and terminate the loop
)

const (
	defaultWatchdogTick = 5 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// LocalOp enumerates the interactive menu operations.
type LocalOp int

const (
	LocalAddItem LocalOp = iota + 1
	LocalRequestItem
	LocalInsertMoney
	LocalDispense
	LocalCancel
	LocalExit
)

// LocalRequest is one decoded interactive command. It competes with the
// remote command queue at the controller's single arbitration point.
type LocalRequest struct {
	Op     LocalOp
	Item   vending.Item // LocalAddItem
	ItemID uint64       // LocalRequestItem
	Amount uint64       // LocalInsertMoney
}

// StatusBroadcaster publishes snapshots to the operators after mutations.
type StatusBroadcaster interface {
	Broadcast(ctx context.Context, snap vending.MachineSnapshot)
}

// StatusSink receives snapshots for local read-only consumers (HTTP API,
// console). The controller is its only writer.
type StatusSink interface {
	Set(snap vending.MachineSnapshot)
}

// ControllerConfig tunes the idle watchdog.
type ControllerConfig struct {
	WatchdogTick time.Duration
	IdleTimeout  time.Duration
	OnTimeout    string // TimeoutReset | TimeoutShutdown
}

func (c *ControllerConfig) applyDefaults() {
	if c.WatchdogTick <= 0 {
		c.WatchdogTick = defaultWatchdogTick
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.OnTimeout != TimeoutShutdown {
		c.OnTimeout = TimeoutReset
	}
}

// Controller is the single owner of the machine. Its loop waits on four
// sources: context cancellation (shutdown signal), the authenticated command
// queue, the idle watchdog, and local interactive input. Exactly one event is
// processed to completion per iteration, giving a total order over all
// mutations without locking.
type Controller struct {
	log      *logger.Logger
	machine  *Machine
	commands <-chan command.AdminCommand
	input    <-chan LocalRequest

	events      repository.EventRepo
	broadcaster StatusBroadcaster
	sink        StatusSink

	cfg ControllerConfig
}

func NewController(
	log *logger.Logger,
	m *Machine,
	commands <-chan command.AdminCommand,
	input <-chan LocalRequest,
	events repository.EventRepo,
	broadcaster StatusBroadcaster,
	sink StatusSink,
	cfg ControllerConfig,
) *Controller {
	cfg.applyDefaults()
	return &Controller{
		log:         log,
		machine:     m,
		commands:    commands,
		input:       input,
		events:      events,
		broadcaster: broadcaster,
		sink:        sink,
		cfg:         cfg,
	}
}

// Run drives the event loop until the context is cancelled, a Shutdown
// command arrives, the console asks to exit, or an idle timeout fires under
// the shutdown policy. A bad command never halts the loop.
func (c *Controller) Run(ctx context.Context) error {
	watchdog := time.NewTicker(c.cfg.WatchdogTick)
	defer watchdog.Stop()

	c.publishSnapshot(ctx, false)

	for {
		select {
		case <-ctx.Done():
			c.log.Infow("shutdown signal received, exiting")
			return nil
		case cmd, ok := <-c.commands:
			if !ok {
				// remote listener gone; keep serving local input
				c.commands = nil
				continue
			}
			if c.dispatch(ctx, cmd) {
				return nil
			}
		case <-watchdog.C:
			if c.checkIdle(ctx) {
				return nil
			}
		case req, ok := <-c.input:
			if !ok {
				c.input = nil
				continue
			}
			if c.applyLocal(ctx, req) {
				return nil
			}
		}
	}
}

// dispatch applies one authenticated admin command. Returns true when the
// loop should terminate.
func (c *Controller) dispatch(ctx context.Context, cmd command.AdminCommand) bool {
	switch cmd.Kind {
	case command.KindRequestAdminState:
		if err := c.machine.EnterAdmin(); err != nil {
			c.reject(ctx, cmd.Kind, err)
			return false
		}
		c.record(ctx, vending.EventAdminEnter, "admin session opened", nil)
		c.publishSnapshot(ctx, true)

	case command.KindAddItem:
		if cmd.AddItem == nil {
			c.log.Warnw("add item command without payload")
			return false
		}
		item := vending.Item{
			ID:    cmd.AddItem.ID,
			Name:  cmd.AddItem.Name,
			Price: cmd.AddItem.Price,
			Count: cmd.AddItem.Count,
		}
		if err := c.machine.AddItem(item); err != nil {
			c.reject(ctx, cmd.Kind, err)
			return false
		}
		c.record(ctx, vending.EventItemAdded, "item added to catalog", map[string]any{
			"item_id": item.ID, "count": item.Count,
		})
		c.publishSnapshot(ctx, true)

	case command.KindRemoveItem:
		if err := c.machine.RemoveItem(cmd.RemoveItem); err != nil {
			c.reject(ctx, cmd.Kind, err)
			return false
		}
		c.record(ctx, vending.EventItemRemoved, "item removed from catalog", map[string]any{
			"item_id": cmd.RemoveItem,
		})
		c.publishSnapshot(ctx, true)

	case command.KindChangePrice:
		if cmd.ChangePrice == nil {
			c.log.Warnw("change price command without payload")
			return false
		}
		if err := c.machine.ChangePrice(cmd.ChangePrice.ID, cmd.ChangePrice.Price); err != nil {
			c.reject(ctx, cmd.Kind, err)
			return false
		}
		c.record(ctx, vending.EventPriceChanged, "item price changed", map[string]any{
			"item_id": cmd.ChangePrice.ID, "price": cmd.ChangePrice.Price,
		})
		c.publishSnapshot(ctx, true)

	case command.KindStatus:
		// read-only: broadcast the current snapshot, no state change
		if c.broadcaster != nil {
			c.broadcaster.Broadcast(ctx, c.machine.Snapshot())
		}

	case command.KindReboot:
		// placeholder, kept as a logged no-op
		c.log.Infow("admin requested reboot")

	case command.KindEndSession:
		wasAdmin := c.machine.UnderAdmin()
		if err := c.machine.Cancel(); err != nil {
			c.reject(ctx, cmd.Kind, err)
			return false
		}
		if wasAdmin {
			c.record(ctx, vending.EventAdminExit, "admin session ended", nil)
		}
		c.publishSnapshot(ctx, true)

	case command.KindShutdown:
		c.log.Infow("shutdown command received, exiting")
		return true

	default:
		c.log.Warnw("unknown admin command", "kind", cmd.Kind)
	}
	return false
}

// checkIdle enforces the admin session timeout. Returns true when the
// configured policy terminates the loop.
func (c *Controller) checkIdle(ctx context.Context) bool {
	if !c.machine.UnderAdmin() {
		return false
	}
	last, ok := c.machine.LastActivity()
	if !ok || time.Since(last) <= c.cfg.IdleTimeout {
		return false
	}
	c.log.Warnw("admin session idle, forcing cancel",
		"idle", time.Since(last).Round(time.Second), "policy", c.cfg.OnTimeout)
	if err := c.machine.Cancel(); err != nil {
		c.log.Errorw("idle_cancel_failed", "err", err)
	}
	c.record(ctx, vending.EventSessionTimeout, "admin session timed out", nil)
	c.publishSnapshot(ctx, true)
	return c.cfg.OnTimeout == TimeoutShutdown
}

// applyLocal applies one interactive command through the same state machine
// as the remote path. Returns true when the console asked to exit.
func (c *Controller) applyLocal(ctx context.Context, req LocalRequest) bool {
	switch req.Op {
	case LocalAddItem:
		if err := c.machine.AddItem(req.Item); err != nil {
			c.reject(ctx, "addItem", err)
			return false
		}
		c.record(ctx, vending.EventItemAdded, "item added to catalog", map[string]any{
			"item_id": req.Item.ID, "count": req.Item.Count,
		})
		c.publishSnapshot(ctx, true)

	case LocalRequestItem:
		if err := c.machine.RequestItem(req.ItemID); err != nil {
			c.log.Infow("request item rejected", "item_id", req.ItemID, "err", err)
			return false
		}
		c.publishSnapshot(ctx, true)

	case LocalInsertMoney:
		if err := c.machine.InsertMoney(req.Amount); err != nil {
			// wrong amount is recoverable; the selection is kept
			c.log.Infow("insert money rejected", "amount", req.Amount, "err", err)
			return false
		}
		c.publishSnapshot(ctx, true)

	case LocalDispense:
		item, err := c.machine.DispenseItem()
		if err != nil {
			c.reject(ctx, "dispenseItem", err)
			return false
		}
		c.record(ctx, vending.EventSale, "item sold", map[string]any{
			"item_id": item.ID, "name": item.Name, "price": item.Price, "remaining": item.Count,
		})
		c.publishSnapshot(ctx, true)

	case LocalCancel:
		wasAdmin := c.machine.UnderAdmin()
		if err := c.machine.Cancel(); err != nil {
			c.reject(ctx, "cancel", err)
			return false
		}
		if wasAdmin {
			c.record(ctx, vending.EventAdminExit, "admin session ended", nil)
		}
		c.publishSnapshot(ctx, true)

	case LocalExit:
		c.log.Infow("console exit requested, shutting down")
		return true

	default:
		c.log.Warnw("unknown local request", "op", req.Op)
	}
	return false
}

// reject logs a typed state-machine failure and records it in the audit log.
// The loop always continues.
func (c *Controller) reject(ctx context.Context, op any, err error) {
	c.log.Warnw("command rejected", "op", op, "err", err)
	c.record(ctx, vending.EventError, "command rejected", map[string]any{
		"op": op, "err": err.Error(),
	})
}

// record appends one audit event; failures only warn.
func (c *Controller) record(ctx context.Context, typ, desc string, meta map[string]any) {
	if c.events == nil {
		return
	}
	event := vending.MachineEvent{Type: typ, Description: desc}
	if meta != nil {
		event.Metadata = meta
	}
	if err := c.events.Append(ctx, event); err != nil {
		c.log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}

// publishSnapshot refreshes the read model and, after mutations, pushes the
// status document to the operators.
func (c *Controller) publishSnapshot(ctx context.Context, broadcast bool) {
	snap := c.machine.Snapshot()
	if c.sink != nil {
		c.sink.Set(snap)
	}
	if broadcast && c.broadcaster != nil {
		c.broadcaster.Broadcast(ctx, snap)
	}
}
