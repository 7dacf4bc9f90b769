package domain

import (
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// LineTotal is price x quantity for this row.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart keeps items in insertion order. Every operation is total: unknown ids are ignored and
// no item is ever stored with a quantity below one.
type Cart struct {
	Items  []CartItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}

func (c *Cart) AddItem(p catalog.Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, CartItem{Product: p, Quantity: 1})
}

// UpdateQuantity sets the absolute quantity; zero or below removes the item.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}
	if i := c.indexOf(id); i >= 0 {
		c.Items[i].Quantity = quantity
	}
}

func (c *Cart) RemoveItem(id string) {
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Open()  { c.IsOpen = true }
func (c *Cart) Close() { c.IsOpen = false }

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy of the item slice so readers never observe later mutations.
func (c Cart) Clone() Cart {
	out := Cart{IsOpen: c.IsOpen}
	if len(c.Items) > 0 {
		out.Items = make([]CartItem, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}

func (c Cart) indexOf(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
