package machine

import (
	"fmt"

	vending "vending_control"
)

// itemRequestedState holds the selected item while waiting for payment.
type itemRequestedState struct {
	baseState
	item vending.Item
}

func (itemRequestedState) name() string { return vending.StateItemRequested }

func (itemRequestedState) commands() string { return "Commands: (3) insertMoney (5) cancel" }

func (itemRequestedState) requestItem(_ *Machine, _ uint64) (state, error) {
	return nil, fmt.Errorf("%w: requested another item while a selection is pending", ErrInvalidTransition)
}

// insertMoney accepts exact payment only. A wrong amount keeps the selection
// so the customer can retry.
func (s itemRequestedState) insertMoney(m *Machine, amount uint64) (state, error) {
	if amount != s.item.Price {
		m.log.Infow("wrong amount inserted", "inserted", amount, "price", s.item.Price)
		return nil, fmt.Errorf("%w: inserted %d units, item costs %d units", ErrWrongAmount, amount, s.item.Price)
	}
	m.log.Infow("payment accepted", "amount", amount, "item_id", s.item.ID)
	return hasMoneyState{paidItemID: s.item.ID, amount: amount}, nil
}

func (itemRequestedState) dispenseItem(_ *Machine) (state, vending.Item, error) {
	return nil, vending.Item{}, fmt.Errorf("%w: insert money first", ErrInvalidTransition)
}
