package service

import (
	"sync"
	"testing"

	vending "vending_control"
)

func TestSnapshotStore_DefaultIsListening(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore()
	got := s.Status()
	if got.State != vending.StateListening {
		t.Fatalf("expected default state Listening, got %q", got.State)
	}
	if got.UnderAdmin {
		t.Fatalf("expected under_admin=false before any update")
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", got.Items)
	}
}

func TestSnapshotStore_SetReplacesSnapshot(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore()
	s.Set(vending.MachineSnapshot{
		UnderAdmin: true,
		State:      vending.StateAdminMode,
		Items:      []vending.Item{{ID: 1, Name: "cola", Price: 100, Count: 5}},
	})

	got := s.Status()
	if got.State != vending.StateAdminMode || !got.UnderAdmin {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "cola" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
}

func TestSnapshotStore_StatusReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore()
	s.Set(vending.MachineSnapshot{
		State: vending.StateListening,
		Items: []vending.Item{{ID: 2, Name: "water", Price: 50, Count: 3}},
	})

	first := s.Status()
	first.Items[0].Count = 999

	second := s.Status()
	if second.Items[0].Count != 3 {
		t.Fatalf("mutating a returned snapshot leaked into the store: %+v", second.Items[0])
	}
}

func TestSnapshotStore_NilItemsNormalized(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore()
	s.Set(vending.MachineSnapshot{State: vending.StateListening, Items: nil})
	if got := s.Status(); got.Items == nil {
		t.Fatalf("expected non-nil items after Set with nil slice")
	}
}

func TestSnapshotStore_ConcurrentReadersAndWriter(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.Status()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			s.Set(vending.MachineSnapshot{
				State: vending.StateHasMoney,
				Items: []vending.Item{{ID: uint64(j), Name: "x", Price: 1, Count: 1}},
			})
		}
	}()
	wg.Wait()

	if got := s.Status(); got.State != vending.StateHasMoney {
		t.Fatalf("expected final state HasMoney, got %q", got.State)
	}
}
