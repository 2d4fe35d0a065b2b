// Package command defines the closed set of operator commands and their wire
// encoding: a tagged JSON object {"type": "<Variant>", "data": {...}}.
package command

import (
	"encoding/json"
	"fmt"
)

// Kind tags an AdminCommand variant on the wire.
type Kind string

const (
	KindRequestAdminState Kind = "RequestAdminState"
	KindReboot            Kind = "Reboot"
	KindStatus            Kind = "Status"
	KindAddItem           Kind = "AddItem"
	KindRemoveItem        Kind = "RemoveItem"
	KindChangePrice       Kind = "ChangePrice"
	KindEndSession        Kind = "EndSession"
	KindShutdown          Kind = "Shutdown"
)

// AddItemData is the payload of an AddItem command.
type AddItemData struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Price uint64 `json:"price"`
	Count uint64 `json:"count"`
}

// ChangePriceData is the payload of a ChangePrice command.
type ChangePriceData struct {
	ID    uint64 `json:"id"`
	Price uint64 `json:"price"`
}

// AdminCommand is a decoded operator command. Exactly one payload field is
// meaningful, selected by Kind. Constructed on decode, consumed once by the
// controller, never persisted.
type AdminCommand struct {
	Kind        Kind
	AddItem     *AddItemData
	ChangePrice *ChangePriceData
	RemoveItem  uint64 // RemoveItem carries a bare item id on the wire
}

// envelope is the wire representation.
type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the command in the tagged wire format.
func (c AdminCommand) MarshalJSON() ([]byte, error) {
	env := envelope{Type: c.Kind}
	switch c.Kind {
	case KindAddItem:
		if c.AddItem == nil {
			return nil, fmt.Errorf("encode %s: missing payload", c.Kind)
		}
		data, err := json.Marshal(c.AddItem)
		if err != nil {
			return nil, err
		}
		env.Data = data
	case KindChangePrice:
		if c.ChangePrice == nil {
			return nil, fmt.Errorf("encode %s: missing payload", c.Kind)
		}
		data, err := json.Marshal(c.ChangePrice)
		if err != nil {
			return nil, err
		}
		env.Data = data
	case KindRemoveItem:
		data, err := json.Marshal(c.RemoveItem)
		if err != nil {
			return nil, err
		}
		env.Data = data
	case KindRequestAdminState, KindReboot, KindStatus, KindEndSession, KindShutdown:
		// no payload
	default:
		return nil, fmt.Errorf("encode: unknown command kind %q", c.Kind)
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the tagged wire format. Unknown kinds and payloads
// that do not match the declared kind are rejected.
func (c *AdminCommand) UnmarshalJSON(raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	out := AdminCommand{Kind: env.Type}
	switch env.Type {
	case KindAddItem:
		var data AddItemData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		out.AddItem = &data
	case KindChangePrice:
		var data ChangePriceData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		out.ChangePrice = &data
	case KindRemoveItem:
		if err := json.Unmarshal(env.Data, &out.RemoveItem); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	case KindRequestAdminState, KindReboot, KindStatus, KindEndSession, KindShutdown:
		// no payload
	default:
		return fmt.Errorf("decode: unknown command kind %q", env.Type)
	}
	*c = out
	return nil
}

// Decode parses a raw plaintext into an AdminCommand.
func Decode(raw []byte) (AdminCommand, error) {
	var c AdminCommand
	if err := json.Unmarshal(raw, &c); err != nil {
		return AdminCommand{}, err
	}
	return c, nil
}
