package catalog

import (
	"errors"
	"fmt"
	"sort"

	vending "vending_control"
)

// Domain errors for catalog mutations.
var (
	ErrItemNotFound = errors.New("item does not exist")
	ErrOutOfStock   = errors.New("item is out of stock")
	ErrInvalidPrice = errors.New("price must be greater than zero")
)

// Catalog owns the id -> item mapping. It is not safe for concurrent use;
// the controller is its single owner.
type Catalog struct {
	items map[uint64]vending.Item
}

func New() *Catalog {
	return &Catalog{items: make(map[uint64]vending.Item)}
}

// Upsert creates the item with the given name/price when the id is new, or
// adds delta to the existing count. Name and price are fixed at creation and
// ignored on subsequent calls; price changes go through SetPrice only.
func (c *Catalog) Upsert(id uint64, name string, price uint64, delta uint64) error {
	item, ok := c.items[id]
	if !ok {
		if price == 0 {
			return fmt.Errorf("create item %d: %w", id, ErrInvalidPrice)
		}
		c.items[id] = vending.Item{ID: id, Name: name, Price: price, Count: delta}
		return nil
	}
	item.Count += delta
	c.items[id] = item
	return nil
}

// Remove deletes the item from the menu.
func (c *Catalog) Remove(id uint64) error {
	if _, ok := c.items[id]; !ok {
		return fmt.Errorf("remove item %d: %w", id, ErrItemNotFound)
	}
	delete(c.items, id)
	return nil
}

// SetPrice changes the price of an existing item.
func (c *Catalog) SetPrice(id uint64, price uint64) error {
	item, ok := c.items[id]
	if !ok {
		return fmt.Errorf("change price of item %d: %w", id, ErrItemNotFound)
	}
	if price == 0 {
		return fmt.Errorf("change price of item %d: %w", id, ErrInvalidPrice)
	}
	item.Price = price
	c.items[id] = item
	return nil
}

// DecrementOnSale takes one unit off the shelf. Stock is re-checked here so a
// stale selection can never drive the count below zero.
func (c *Catalog) DecrementOnSale(id uint64) error {
	item, ok := c.items[id]
	if !ok {
		return fmt.Errorf("sell item %d: %w", id, ErrItemNotFound)
	}
	if item.Count == 0 {
		return fmt.Errorf("sell item %d: %w", id, ErrOutOfStock)
	}
	item.Count--
	c.items[id] = item
	return nil
}

// Get returns the item and whether it exists.
func (c *Catalog) Get(id uint64) (vending.Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Snapshot returns all items ordered by id.
func (c *Catalog) Snapshot() []vending.Item {
	out := make([]vending.Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
