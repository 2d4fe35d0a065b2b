package machine

import (
	vending "vending_control"
)

// listeningState is the idle state: the machine waits for a selection or for
// an operator to open an admin session.
type listeningState struct {
	baseState
}

func (listeningState) name() string { return vending.StateListening }

func (listeningState) commands() string { return "Commands: (1) addItem (2) requestItem" }

// requestItem moves to ItemRequested when the item exists and has stock.
// Unknown ids and empty slots are non-fatal: the machine stays Listening and
// only logs a notice.
func (s listeningState) requestItem(m *Machine, itemID uint64) (state, error) {
	item, ok := m.catalog.Get(itemID)
	if !ok {
		m.log.Infow("invalid item id", "item_id", itemID)
		return s, nil
	}
	if item.Count == 0 {
		m.log.Infow("item out of stock", "item_id", item.ID, "name", item.Name)
		return s, nil
	}
	m.log.Infow("item requested", "item_id", item.ID, "name", item.Name, "price", item.Price)
	return itemRequestedState{item: item}, nil
}

func (listeningState) enterAdmin(m *Machine) (state, error) {
	m.underAdmin = true
	m.log.Infow("admin session opened")
	return adminState{}, nil
}
