// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package analytics builds GA4-shaped ecommerce events for catalog, cart
// and checkout activity and hands them to a Tracker.
package analytics

import (
	"context"
	"log/slog"
	"strconv"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/models"
)

// Currency is the ISO code of every amount in an event.
const Currency = "AOA"

// Event names.
const (
	ViewItemList   = "view_item_list"
	SelectItem     = "select_item"
	ViewItem       = "view_item"
	AddToCart      = "add_to_cart"
	RemoveFromCart = "remove_from_cart"
	BeginCheckout  = "begin_checkout"
	Purchase       = "purchase"
	Search         = "search"
	FilterApply    = "filter_apply"
)

// Item is a GA4 ecommerce item.
type Item struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	ItemBrand    string `json:"item_brand,omitempty"`
	ItemVariant  string `json:"item_variant,omitempty"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity,omitempty"`
	ItemListID   string `json:"item_list_id,omitempty"`
	ItemListName string `json:"item_list_name,omitempty"`
	Index        int    `json:"index"`

	ProductID int64  `json:"product_id,omitempty"`
	VariantID int64  `json:"variant_id,omitempty"`
	SizeID    *int64 `json:"size_id,omitempty"`
}

// Ecommerce is the ecommerce block of an event.
type Ecommerce struct {
	Currency      string `json:"currency"`
	Value         int64  `json:"value,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	ItemListID    string `json:"item_list_id,omitempty"`
	ItemListName  string `json:"item_list_name,omitempty"`
	Items         []Item `json:"items"`
}

// Event is one analytics event. Search and filter events carry Params
// instead of an Ecommerce block.
type Event struct {
	Name      string            `json:"event"`
	Ecommerce *Ecommerce        `json:"ecommerce,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// Tracker receives events.
type Tracker interface {
	Track(ctx context.Context, e Event)
}

// LogTracker writes events to the structured log.
type LogTracker struct {
	Logger *slog.Logger
}

// Track logs the event at info level.
func (t LogTracker) Track(ctx context.Context, e Event) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"event", e.Name}
	if e.Ecommerce != nil {
		attrs = append(attrs,
			"currency", e.Ecommerce.Currency,
			"value", e.Ecommerce.Value,
			"items", len(e.Ecommerce.Items),
		)
		if e.Ecommerce.TransactionID != "" {
			attrs = append(attrs, "transaction_id", e.Ecommerce.TransactionID)
		}
		if e.Ecommerce.ItemListID != "" {
			attrs = append(attrs, "item_list_id", e.Ecommerce.ItemListID)
		}
	}
	for k, v := range e.Params {
		attrs = append(attrs, k, v)
	}
	logger.InfoContext(ctx, "analytics event", attrs...)
}

// Discard drops every event.
type Discard struct{}

// Track does nothing.
func (Discard) Track(context.Context, Event) {}

func ecommerce(name string, value int64, items []Item) Event {
	if items == nil {
		items = []Item{}
	}
	return Event{Name: name, Ecommerce: &Ecommerce{Currency: Currency, Value: value, Items: items}}
}

// ListItems converts a listing page into GA4 items in display order.
func ListItems(listID, listName string, items []catalog.ListItem) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{
			ItemID:       strconv.FormatInt(it.ID, 10),
			ItemName:     it.Title,
			Price:        it.Price,
			ItemListID:   listID,
			ItemListName: listName,
			Index:        i,
			ProductID:    it.ID,
			SizeID:       it.DefaultSizeID,
		}
		if it.BrandName != nil {
			out[i].ItemBrand = *it.BrandName
		}
		if it.DefaultVariantID != nil {
			out[i].VariantID = *it.DefaultVariantID
		}
		if it.DefaultVariantLabel != nil {
			out[i].ItemVariant = *it.DefaultVariantLabel
		}
	}
	return out
}

// ViewItemListEvent reports a rendered listing page.
func ViewItemListEvent(listID, listName string, items []catalog.ListItem) Event {
	e := ecommerce(ViewItemList, 0, ListItems(listID, listName, items))
	e.Ecommerce.ItemListID = listID
	e.Ecommerce.ItemListName = listName
	return e
}

// SelectItemEvent reports a product picked from a listing.
func SelectItemEvent(listID, listName string, item catalog.ListItem, index int) Event {
	it := ListItems(listID, listName, []catalog.ListItem{item})
	it[0].Index = index
	e := ecommerce(SelectItem, 0, it)
	e.Ecommerce.ItemListID = listID
	e.Ecommerce.ItemListName = listName
	return e
}

// ViewItemEvent reports a product page view.
func ViewItemEvent(p *models.Product) Event {
	items := make([]Item, 0, len(p.Variants))
	for i, v := range p.Variants {
		it := Item{
			ItemID:    strconv.FormatInt(p.ID, 10),
			ItemName:  p.Title,
			Price:     v.Price,
			Index:     i,
			ProductID: p.ID,
			VariantID: v.ID,
		}
		if v.Color != nil {
			it.ItemVariant = *v.Color
		}
		if p.BrandName != nil {
			it.ItemBrand = *p.BrandName
		}
		items = append(items, it)
	}
	return ecommerce(ViewItem, 0, items)
}

func cartItem(it cart.Item, qty int) Item {
	return Item{
		ItemID:    it.Key,
		ItemName:  it.Title,
		Price:     it.Price,
		Quantity:  qty,
		ProductID: it.ProductID,
		VariantID: it.VariantID,
		SizeID:    it.SizeID,
	}
}

// CartEvent maps a cart change to add_to_cart or remove_from_cart. Clearing
// the cart produces no event.
func CartEvent(ch cart.Change) (Event, bool) {
	var name string
	switch ch.Kind {
	case cart.ChangeAdd:
		name = AddToCart
	case cart.ChangeRemove:
		name = RemoveFromCart
	default:
		return Event{}, false
	}
	return ecommerce(name, ch.Item.Price*int64(ch.Delta), []Item{cartItem(ch.Item, ch.Delta)}), true
}

// CartListener returns a cart listener forwarding changes to t.
func CartListener(ctx context.Context, t Tracker) cart.Listener {
	return func(ch cart.Change) {
		if e, ok := CartEvent(ch); ok {
			t.Track(ctx, e)
		}
	}
}

func cartItems(c *cart.Cart) []Item {
	out := make([]Item, len(c.Items))
	for i, it := range c.Items {
		out[i] = cartItem(it, it.Qty)
		out[i].Index = i
	}
	return out
}

// BeginCheckoutEvent reports the start of checkout with the cart content.
func BeginCheckoutEvent(c *cart.Cart) Event {
	return ecommerce(BeginCheckout, c.Total(), cartItems(c))
}

// PurchaseEvent reports a placed order.
func PurchaseEvent(o *models.Order) Event {
	items := make([]Item, len(o.Items))
	for i, it := range o.Items {
		k := cart.Key{ProductID: it.ProductID, VariantID: it.VariantID, SizeID: it.SizeID}
		items[i] = Item{
			ItemID:    k.String(),
			ItemName:  it.Title,
			Price:     it.UnitPrice,
			Quantity:  it.Qty,
			Index:     i,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			SizeID:    it.SizeID,
		}
	}
	e := ecommerce(Purchase, o.Totals.Total, items)
	e.Ecommerce.TransactionID = o.Number
	return e
}

// SearchEvent reports a text search and its result count.
func SearchEvent(term string, results uint64) Event {
	return Event{Name: Search, Params: map[string]string{
		"search_term":   term,
		"results_count": strconv.FormatUint(results, 10),
	}}
}

// FilterApplyEvent reports a facet applied to a listing.
func FilterApplyEvent(filterType, value string) Event {
	return Event{Name: FilterApply, Params: map[string]string{
		"filter_type":  filterType,
		"filter_value": value,
	}}
}

// ListingEvents returns the events a listing request produces: the list
// view, a search event for text queries and one filter event per facet.
func ListingEvents(req catalog.ListRequest, l *catalog.Listing) []Event {
	listID := req.Slug
	if listID == "" {
		listID = req.Gender
	}
	if listID == "" {
		listID = "all"
	}
	events := []Event{ViewItemListEvent(listID, listID, l.Items)}
	if req.Query != "" {
		events = append(events, SearchEvent(req.Query, l.Total))
	}
	if req.Variant.Color != nil {
		events = append(events, FilterApplyEvent("color", *req.Variant.Color))
	}
	if req.Variant.Size != nil {
		events = append(events, FilterApplyEvent("size", *req.Variant.Size))
	}
	if req.Variant.MinPrice != nil {
		events = append(events, FilterApplyEvent("min_price", strconv.FormatInt(*req.Variant.MinPrice, 10)))
	}
	if req.Variant.MaxPrice != nil {
		events = append(events, FilterApplyEvent("max_price", strconv.FormatInt(*req.Variant.MaxPrice, 10)))
	}
	if req.BrandSlug != "" {
		events = append(events, FilterApplyEvent("brand", req.BrandSlug))
	}
	return events
}
