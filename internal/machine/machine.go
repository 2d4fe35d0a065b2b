// Package machine implements the vending machine transaction state machine
// and the controller loop that serializes every mutation.
package machine

import (
	"fmt"
	"time"

	vending "vending_control"
	"vending_control/internal/catalog"
	"vending_control/internal/logger"
)

// Machine owns the transaction state, the catalog and the admin session
// flags. It is not safe for concurrent use: the controller is its single
// owner and applies exactly one event at a time.
type Machine struct {
	log     *logger.Logger
	catalog *catalog.Catalog

	state        state
	underAdmin   bool
	lastActivity time.Time // zero until the first admin-gated mutation
}

func New(log *logger.Logger, cat *catalog.Catalog) *Machine {
	return &Machine{
		log:     log,
		catalog: cat,
		state:   listeningState{},
	}
}

// touch resets the idle clock. Only admin sessions are watched, so activity
// outside a session is not recorded.
func (m *Machine) touch() {
	if m.underAdmin {
		m.lastActivity = time.Now()
	}
}

// RequestItem selects an item for purchase.
func (m *Machine) RequestItem(itemID uint64) error {
	m.touch()
	next, err := m.state.requestItem(m, itemID)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// InsertMoney pays for the pending selection. Exact amount required.
func (m *Machine) InsertMoney(amount uint64) error {
	m.touch()
	next, err := m.state.insertMoney(m, amount)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// DispenseItem hands out the paid item and returns its post-sale snapshot.
func (m *Machine) DispenseItem() (vending.Item, error) {
	m.touch()
	next, item, err := m.state.dispenseItem(m)
	if err != nil {
		return vending.Item{}, err
	}
	m.state = next
	return item, nil
}

// Cancel aborts the current flow and returns to Listening. From AdminMode it
// closes the session.
func (m *Machine) Cancel() error {
	m.touch()
	next, err := m.state.cancel(m)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// EnterAdmin opens an admin session. Only reachable from Listening.
func (m *Machine) EnterAdmin() error {
	m.touch()
	next, err := m.state.enterAdmin(m)
	if err != nil {
		return err
	}
	m.state = next
	m.touch()
	return nil
}

// AddItem creates or restocks a catalog item. Admin only.
func (m *Machine) AddItem(item vending.Item) error {
	m.touch()
	if !m.underAdmin {
		return fmt.Errorf("%w: only admin can add items", ErrUnauthorized)
	}
	next, err := m.state.addItem(m, item)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// RemoveItem deletes a catalog item. Admin only.
func (m *Machine) RemoveItem(itemID uint64) error {
	m.touch()
	if !m.underAdmin {
		return fmt.Errorf("%w: only admin can remove items", ErrUnauthorized)
	}
	next, err := m.state.removeItem(m, itemID)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// ChangePrice updates the price of an existing item. Admin only.
func (m *Machine) ChangePrice(itemID, price uint64) error {
	m.touch()
	if !m.underAdmin {
		return fmt.Errorf("%w: only admin can change prices", ErrUnauthorized)
	}
	next, err := m.state.changePrice(m, itemID, price)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// UnderAdmin reports whether an admin session is open.
func (m *Machine) UnderAdmin() bool { return m.underAdmin }

// StateName returns the name of the active state.
func (m *Machine) StateName() string { return m.state.name() }

// CommandsHint returns the menu line for the active state.
func (m *Machine) CommandsHint() string { return m.state.commands() }

// LastActivity returns the time of the last admin-gated mutation; ok is
// false before the first one.
func (m *Machine) LastActivity() (time.Time, bool) {
	return m.lastActivity, !m.lastActivity.IsZero()
}

// Item looks up a catalog item.
func (m *Machine) Item(itemID uint64) (vending.Item, bool) {
	return m.catalog.Get(itemID)
}

// Snapshot captures the status document broadcast after mutations.
func (m *Machine) Snapshot() vending.MachineSnapshot {
	return vending.MachineSnapshot{
		UnderAdmin: m.underAdmin,
		Items:      m.catalog.Snapshot(),
		State:      m.state.name(),
	}
}
