package command

import (
	"encoding/json"
	"testing"
)

func TestDecode_AddItem(t *testing.T) {
	raw := `{"type":"AddItem","data":{"id":42,"name":"Soda","price":100,"count":5}}`
	cmd, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindAddItem {
		t.Fatalf("expected kind AddItem, got %s", cmd.Kind)
	}
	if cmd.AddItem == nil {
		t.Fatalf("expected AddItem payload")
	}
	if cmd.AddItem.ID != 42 || cmd.AddItem.Name != "Soda" || cmd.AddItem.Price != 100 || cmd.AddItem.Count != 5 {
		t.Fatalf("unexpected payload: %+v", cmd.AddItem)
	}
}

func TestDecode_RemoveItemBareInteger(t *testing.T) {
	cmd, err := Decode([]byte(`{"type":"RemoveItem","data":7}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindRemoveItem || cmd.RemoveItem != 7 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestDecode_NoPayloadVariants(t *testing.T) {
	for _, kind := range []Kind{KindRequestAdminState, KindReboot, KindStatus, KindEndSession, KindShutdown} {
		cmd, err := Decode([]byte(`{"type":"` + string(kind) + `"}`))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}
		if cmd.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, cmd.Kind)
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown kind":        `{"type":"SelfDestruct"}`,
		"not json":            `reboot please`,
		"mismatched payload":  `{"type":"ChangePrice","data":"soon"}`,
		"bare string remove":  `{"type":"RemoveItem","data":"7"}`,
		"missing add payload": `{"type":"AddItem"}`,
	}
	for name, raw := range cases {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Fatalf("%s: expected decode error for %s", name, raw)
		}
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cmds := []AdminCommand{
		{Kind: KindRequestAdminState},
		{Kind: KindAddItem, AddItem: &AddItemData{ID: 1, Name: "Bar", Price: 80, Count: 12}},
		{Kind: KindChangePrice, ChangePrice: &ChangePriceData{ID: 22, Price: 150}},
		{Kind: KindRemoveItem, RemoveItem: 22},
		{Kind: KindShutdown},
	}
	for _, in := range cmds {
		raw, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("%s: marshal: %v", in.Kind, err)
		}
		out, err := Decode(raw)
		if err != nil {
			t.Fatalf("%s: decode: %v", in.Kind, err)
		}
		if out.Kind != in.Kind || out.RemoveItem != in.RemoveItem {
			t.Fatalf("%s: round trip mismatch: %+v", in.Kind, out)
		}
	}
}

func TestMarshal_MissingPayloadFails(t *testing.T) {
	if _, err := json.Marshal(AdminCommand{Kind: KindAddItem}); err == nil {
		t.Fatalf("expected error for AddItem without payload")
	}
}
