package machine

import (
	vending "vending_control"
)

// hasMoneyState holds the paid selection until the item is dispensed. Only
// the item id is kept; stock is re-checked at dispense time.
type hasMoneyState struct {
	baseState
	paidItemID uint64
	amount     uint64
}

func (hasMoneyState) name() string { return vending.StateHasMoney }

func (hasMoneyState) commands() string { return "Commands: (4) dispenseItem (5) cancel" }

// dispenseItem decrements stock for the held item and returns to Listening.
// The catalog guards against a stale selection: a missing or empty slot is an
// error and the state is kept so the customer can cancel.
func (s hasMoneyState) dispenseItem(m *Machine) (state, vending.Item, error) {
	item, _ := m.catalog.Get(s.paidItemID)
	if err := m.catalog.DecrementOnSale(s.paidItemID); err != nil {
		return nil, vending.Item{}, err
	}
	item.Count--
	m.log.Infow("dispensing item", "item_id", item.ID, "name", item.Name)
	return listeningState{}, item, nil
}

// cancel forfeits the held money; nothing beyond a log line tracks the refund.
func (s hasMoneyState) cancel(m *Machine) (state, error) {
	m.log.Infow("purchase cancelled, paying back money", "amount", s.amount)
	return listeningState{}, nil
}
