package machine

import (
	vending "vending_control"
)

// adminState accepts catalog mutations while the operator session is open.
// Customer events are rejected; cancel ends the session.
type adminState struct {
	baseState
}

func (adminState) name() string { return vending.StateAdminMode }

func (adminState) commands() string { return "" }

// enterAdmin is a no-op when the session is already open.
func (s adminState) enterAdmin(_ *Machine) (state, error) {
	return s, nil
}

func (s adminState) addItem(m *Machine, item vending.Item) (state, error) {
	if err := m.catalog.Upsert(item.ID, item.Name, item.Price, item.Count); err != nil {
		return nil, err
	}
	return s, nil
}

func (s adminState) removeItem(m *Machine, itemID uint64) (state, error) {
	if err := m.catalog.Remove(itemID); err != nil {
		return nil, err
	}
	return s, nil
}

func (s adminState) changePrice(m *Machine, itemID, price uint64) (state, error) {
	if err := m.catalog.SetPrice(itemID, price); err != nil {
		return nil, err
	}
	return s, nil
}

func (adminState) cancel(m *Machine) (state, error) {
	m.underAdmin = false
	m.log.Infow("admin session closed")
	return listeningState{}, nil
}
