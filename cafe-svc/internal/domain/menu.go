package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ItemID derives the catalogue id of an item from its name.
func ItemID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Normalize fills in the derived id when the item has none.
func (m MenuItem) Normalize() MenuItem {
	if m.ID == "" {
		m.ID = ItemID(m.Name)
	}
	return m
}

// Merge replaces m with update. The id is kept, and so is the name when the
// update leaves it blank, since the id derives from it. Every other field
// takes the update's value, zero price and empty strings included.
func (m MenuItem) Merge(update MenuItem) MenuItem {
	update.ID = m.ID
	if strings.TrimSpace(update.Name) == "" {
		update.Name = m.Name
	}
	return update
}

// AddToMenu returns a new menu with item added. An item whose id is already
// present replaces the existing entry and moves to the end.
func AddToMenu(menu []MenuItem, item MenuItem) []MenuItem {
	item = item.Normalize()
	next := make([]MenuItem, 0, len(menu)+1)
	for _, existing := range menu {
		if existing.ID == item.ID {
			item = existing.Merge(item)
			continue
		}
		next = append(next, existing)
	}
	return append(next, item)
}

// RemoveFromMenu returns a new menu without the entry matching item's id.
func RemoveFromMenu(menu []MenuItem, item MenuItem) []MenuItem {
	item = item.Normalize()
	next := make([]MenuItem, 0, len(menu))
	for _, existing := range menu {
		if existing.ID != item.ID {
			next = append(next, existing)
		}
	}
	return next
}

func FindMenuItem(menu []MenuItem, id string) (MenuItem, bool) {
	for _, item := range menu {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}

// AddToCart increments the quantity of item in the cart, appending it with
// quantity one when it is not there yet.
func AddToCart(items []OrderItem, item MenuItem) []OrderItem {
	item = item.Normalize()
	next := make([]OrderItem, 0, len(items)+1)
	found := false
	for _, existing := range items {
		if existing.ID == item.ID {
			existing.Quantity++
			found = true
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, OrderItem{MenuItem: item, Quantity: 1})
	}
	return next
}

// RemoveFromCart decrements the quantity of item, dropping the line once it
// reaches zero. Unknown items leave the cart unchanged.
func RemoveFromCart(items []OrderItem, item MenuItem) []OrderItem {
	item = item.Normalize()
	next := make([]OrderItem, 0, len(items))
	for _, existing := range items {
		if existing.ID == item.ID {
			if existing.Quantity <= 1 {
				continue
			}
			existing.Quantity--
		}
		next = append(next, existing)
	}
	return next
}

// ComputeCheckout derives the cart totals. It is the only way checkout
// figures are produced.
func ComputeCheckout(items []OrderItem, settings Settings) Checkout {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tax := subtotal.Mul(settings.TaxRate)
	return Checkout{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
		Currency: settings.NativeCurrency,
	}
}
