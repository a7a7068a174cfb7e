// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/analytics"
	"storefront/internal/apperr"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/store"
)

// numberAttempts bounds the retries on an order number collision.
const numberAttempts = 5

// OrderCreator persists a new order with its items.
type OrderCreator interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
}

// Checkout places guest orders.
type Checkout struct {
	orders  OrderCreator
	carts   cart.Store
	tracker analytics.Tracker
	now     func() time.Time
}

// NewCheckout creates a new Checkout handler. carts may be nil, in which
// case the server-side cart is left untouched after an order.
func NewCheckout(orders OrderCreator, carts cart.Store, tracker analytics.Tracker) *Checkout {
	if tracker == nil {
		tracker = analytics.Discard{}
	}
	return &Checkout{orders: orders, carts: carts, tracker: tracker, now: time.Now}
}

// PlaceOrder serves POST /checkout/place-order and responds 201 with the
// order number.
func (h *Checkout) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, msg := validateCheckout(&req)
	if msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}

	created, err := h.create(r.Context(), order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("order placed", "number", created.Number, "items", len(created.Items), "total", created.Totals.Total)
	h.tracker.Track(r.Context(), analytics.PurchaseEvent(created))

	if id := cart.ID(r); id != "" && h.carts != nil {
		if err := h.carts.Delete(r.Context(), id); err != nil {
			slog.Warn("cart delete after order failed", "cart_id", id, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, map[string]string{"number": created.Number})
}

// create inserts the order, drawing a fresh number on each collision.
func (h *Checkout) create(ctx context.Context, o *models.Order) (*models.Order, error) {
	var err error
	for range numberAttempts {
		o.Number = store.NewOrderNumber(h.now())
		var created *models.Order
		created, err = h.orders.Create(ctx, o)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		slog.Warn("order number collision, retrying", "number", o.Number)
	}
	return nil, err
}
