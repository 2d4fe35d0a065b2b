package service

import (
	"sync"

	vending "vending_control"
)

// SnapshotStore is the read model behind the HTTP surface. The
// controller is the only writer; handlers only ever read a copy, so
// the machine itself stays single-owner.
type SnapshotStore struct {
	mu   sync.RWMutex
	snap vending.MachineSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snap: vending.MachineSnapshot{
			State: vending.StateListening,
			Items: []vending.Item{},
		},
	}
}

// Set replaces the published snapshot.
func (s *SnapshotStore) Set(snap vending.MachineSnapshot) {
	if snap.Items == nil {
		snap.Items = []vending.Item{}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Status returns the last snapshot the controller published.
func (s *SnapshotStore) Status() vending.MachineSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snap
	out.Items = make([]vending.Item, len(s.snap.Items))
	copy(out.Items, s.snap.Items)
	return out
}
