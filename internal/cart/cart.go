// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cart implements the shopper's cart: a list of product variant
// lines keyed by product, variant and optional size, with change listeners
// and Valkey persistence keyed by a cart cookie.
package cart

import (
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Item is one cart line. Key is "product:variant" or "product:variant:size".
type Item struct {
	Key       string  `json:"id"`
	ProductID int64   `json:"product_id"`
	VariantID int64   `json:"variant_id"`
	SizeID    *int64  `json:"size_id,omitempty"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Image     *string `json:"image"`
	Price     int64   `json:"price"`
	Qty       int     `json:"qty"`
}

// Subtotal returns price times quantity.
func (it Item) Subtotal() int64 {
	return it.Price * int64(it.Qty)
}

// MaxQty is the largest quantity a single line can hold.
const MaxQty = 999

// Key identifies a cart line.
type Key struct {
	ProductID int64
	VariantID int64
	SizeID    *int64
}

// String formats the key the way Item.Key stores it.
func (k Key) String() string {
	if k.SizeID != nil {
		return fmt.Sprintf("%d:%d:%d", k.ProductID, k.VariantID, *k.SizeID)
	}
	return fmt.Sprintf("%d:%d", k.ProductID, k.VariantID)
}

// ParseKey parses "product:variant[:size]" with positive ids.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Key{}, apperr.InvalidArgument("invalid cart item id %q", s)
	}
	ids := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n <= 0 {
			return Key{}, apperr.InvalidArgument("invalid cart item id %q", s)
		}
		ids[i] = n
	}
	k := Key{ProductID: ids[0], VariantID: ids[1]}
	if len(ids) == 3 {
		k.SizeID = &ids[2]
	}
	return k, nil
}

// ChangeKind names a cart mutation.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeRemove ChangeKind = "remove"
	ChangeClear  ChangeKind = "clear"
)

// Change describes one mutation. Delta is the quantity added or removed.
type Change struct {
	Kind  ChangeKind
	Item  Item
	Delta int
}

// Listener is notified after every mutation that changed the cart.
type Listener func(Change)

// Cart is an ordered list of lines.
type Cart struct {
	Items []Item `json:"items"`

	listeners []Listener
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []Item{}}
}

// OnChange registers a listener.
func (c *Cart) OnChange(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Cart) notify(ch Change) {
	for _, l := range c.listeners {
		l(ch)
	}
}

func (c *Cart) index(key string) int {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return i
		}
	}
	return -1
}

// Find returns the line with the given key.
func (c *Cart) Find(key string) (Item, bool) {
	if i := c.index(key); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

// Add puts qty units of a product variant (and size, if any) in the cart.
// qty is clamped to [1, MaxQty]. Adding an existing line increases its
// quantity up to MaxQty.
func (c *Cart) Add(p *models.Product, v *models.Variant, size *models.VariantSize, qty int) (Item, error) {
	if p == nil || v == nil || p.ID == 0 || v.ID == 0 {
		return Item{}, apperr.InvalidArgument("product/variant missing")
	}
	if v.ProductID != 0 && v.ProductID != p.ID {
		return Item{}, apperr.InvalidArgument("variant %d does not belong to product %d", v.ID, p.ID)
	}
	qty = min(max(1, qty), MaxQty)

	k := Key{ProductID: p.ID, VariantID: v.ID}
	if size != nil {
		k.SizeID = &size.ID
	}

	if i := c.index(k.String()); i >= 0 {
		delta := min(c.Items[i].Qty+qty, MaxQty) - c.Items[i].Qty
		if delta > 0 {
			c.Items[i].Qty += delta
			c.notify(Change{Kind: ChangeAdd, Item: c.Items[i], Delta: delta})
		}
		return c.Items[i], nil
	}

	title := p.Title
	if v.Color != nil && *v.Color != "" {
		title += " / " + *v.Color
	}
	if size != nil && size.Size != "" {
		title += " / " + size.Size
	}
	it := Item{
		Key:       k.String(),
		ProductID: p.ID,
		VariantID: v.ID,
		SizeID:    k.SizeID,
		Slug:      p.Slug,
		Title:     title,
		Price:     v.Price,
		Qty:       qty,
	}
	if img := v.PrimaryImage(); img != nil {
		it.Image = &img.URL
	}
	c.Items = append(c.Items, it)
	c.notify(Change{Kind: ChangeAdd, Item: it, Delta: qty})
	return it, nil
}

// SetQty sets a line's quantity, clamped to [1, MaxQty]. It reports
// whether the line exists.
func (c *Cart) SetQty(key string, qty int) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	qty = min(max(1, qty), MaxQty)
	delta := qty - c.Items[i].Qty
	c.Items[i].Qty = qty
	switch {
	case delta > 0:
		c.notify(Change{Kind: ChangeAdd, Item: c.Items[i], Delta: delta})
	case delta < 0:
		c.notify(Change{Kind: ChangeRemove, Item: c.Items[i], Delta: -delta})
	}
	return true
}

// Increment adds one unit to a line.
func (c *Cart) Increment(key string) bool {
	it, ok := c.Find(key)
	return ok && c.SetQty(key, it.Qty+1)
}

// Decrement removes one unit from a line, never going below 1.
func (c *Cart) Decrement(key string) bool {
	it, ok := c.Find(key)
	return ok && c.SetQty(key, it.Qty-1)
}

// Remove drops a line.
func (c *Cart) Remove(key string) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	it := c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.notify(Change{Kind: ChangeRemove, Item: it, Delta: it.Qty})
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if len(c.Items) == 0 {
		return
	}
	c.Items = []Item{}
	c.notify(Change{Kind: ChangeClear})
}

// Count returns the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}

// Total returns the cart value in the minor currency unit.
func (c *Cart) Total() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Subtotal()
	}
	return sum
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
