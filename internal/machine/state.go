package machine

import (
	"fmt"

	vending "vending_control"
)

// state is one of the four transaction states. Every event handler returns
// the next state; handlers that reject an event return an error and the
// machine keeps its current state. The machine is the single owner and
// replaces the held state by value on each transition.
type state interface {
	name() string
	commands() string

	// customer events
	requestItem(m *Machine, itemID uint64) (state, error)
	insertMoney(m *Machine, amount uint64) (state, error)
	dispenseItem(m *Machine) (state, vending.Item, error)
	cancel(m *Machine) (state, error)

	// admin events
	enterAdmin(m *Machine) (state, error)
	addItem(m *Machine, item vending.Item) (state, error)
	removeItem(m *Machine, itemID uint64) (state, error)
	changePrice(m *Machine, itemID, price uint64) (state, error)
}

// baseState rejects every event. Concrete states embed it and override only
// the events their row of the transition table accepts.
type baseState struct{}

func (baseState) requestItem(_ *Machine, _ uint64) (state, error) {
	return nil, fmt.Errorf("%w: cannot request item in current state", ErrInvalidTransition)
}

func (baseState) insertMoney(_ *Machine, _ uint64) (state, error) {
	return nil, fmt.Errorf("%w: cannot insert money in current state", ErrInvalidTransition)
}

func (baseState) dispenseItem(_ *Machine) (state, vending.Item, error) {
	return nil, vending.Item{}, fmt.Errorf("%w: cannot dispense item in current state", ErrInvalidTransition)
}

// cancel always returns the machine to Listening unless a state overrides it.
func (baseState) cancel(_ *Machine) (state, error) {
	return listeningState{}, nil
}

func (baseState) enterAdmin(_ *Machine) (state, error) {
	return nil, fmt.Errorf("%w: cannot enter admin in current state", ErrInvalidTransition)
}

func (baseState) addItem(_ *Machine, _ vending.Item) (state, error) {
	return nil, fmt.Errorf("%w: cannot add items in current state", ErrInvalidTransition)
}

func (baseState) removeItem(_ *Machine, _ uint64) (state, error) {
	return nil, fmt.Errorf("%w: cannot remove items in current state", ErrInvalidTransition)
}

func (baseState) changePrice(_ *Machine, _, _ uint64) (state, error) {
	return nil, fmt.Errorf("%w: cannot change price in current state", ErrInvalidTransition)
}
