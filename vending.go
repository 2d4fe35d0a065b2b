package vending_control

import "time"

// Machine states reported in status snapshots.
const (
	StateListening     = "Listening"
	StateItemRequested = "ItemRequested"
	StateHasMoney      = "HasMoney"
	StateAdminMode     = "AdminMode"
)

// Event types recorded in the audit log.
const (
	EventSale           = "SALE"
	EventAdminEnter     = "ADMIN_ENTER"
	EventAdminExit      = "ADMIN_EXIT"
	EventItemAdded      = "ITEM_ADDED"
	EventItemRemoved    = "ITEM_REMOVED"
	EventPriceChanged   = "PRICE_CHANGED"
	EventSessionTimeout = "SESSION_TIMEOUT"
	EventError          = "ERROR"
)

// Item is a single catalog slot. Identity is ID; Count never goes negative.
type Item struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Price uint64 `json:"price"` // abstract money units
	Count uint64 `json:"count"`
}

// MachineSnapshot is the status document broadcast after every mutation.
type MachineSnapshot struct {
	UnderAdmin bool   `json:"under_admin"`
	Items      []Item `json:"items"`
	State      string `json:"state"` // Listening | ItemRequested | HasMoney | AdminMode
}

// MachineEvent is a single audit log entry.
type MachineEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // SALE | ADMIN_ENTER | ... | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
