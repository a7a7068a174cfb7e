// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/analytics"
	"storefront/internal/apperr"
	"storefront/internal/models"
)

// fakeOrders implements OrderCreator and OrderFinder.
type fakeOrders struct {
	conflicts int
	err       error
	numbers   []string
	created   *models.Order
	byNumber  map[string]*models.Order
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) (*models.Order, error) {
	f.numbers = append(f.numbers, o.Number)
	if f.err != nil {
		return nil, f.err
	}
	if f.conflicts > 0 {
		f.conflicts--
		return nil, apperr.Conflict("Order number already exists")
	}
	o.ID = 1
	o.Status = models.OrderPlaced
	o.PaymentStatus = models.PaymentUnpaid
	f.created = o
	return o, nil
}

func (f *fakeOrders) FindByNumber(_ context.Context, number string) (*models.Order, error) {
	if o, ok := f.byNumber[number]; ok {
		return o, nil
	}
	return nil, apperr.NotFound("Order not found")
}

func validCheckoutBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"id": "1:10:100", "title": "Runner / red / 42", "price": 5000, "qty": 2, "slug": "runner"},
			{"id": "2:20", "title": "Cap", "price": 1500, "qty": 1},
		},
		"totals":  map[string]any{"total": 11500, "currency": "AOA"},
		"contact": map[string]any{"name": "Ana", "phone": "+244 900 000 000"},
	}
}

func newTestCheckout(orders *fakeOrders, carts *memCarts, tracker *recordingTracker) *Checkout {
	h := NewCheckout(orders, carts, tracker)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return h
}

var orderNumber = regexp.MustCompile(`^261019-\d{5}$`)

func TestPlaceOrder(t *testing.T) {
	orders := &fakeOrders{}
	carts := newMemCarts()
	cartID := seededCart(t, carts)
	tracker := &recordingTracker{}
	h := newTestCheckout(orders, carts, tracker)

	req := withCartCookie(jsonRequest(t, http.MethodPost, "/checkout/place-order", validCheckoutBody()), cartID)
	rr := serve(h.PlaceOrder, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body map[string]string
	decode(t, rr, &body)
	assert.Regexp(t, orderNumber, body["number"])

	o := orders.created
	require.NotNil(t, o)
	assert.Equal(t, body["number"], o.Number)
	assert.Equal(t, models.Totals{Total: 11500, Currency: "AOA"}, o.Totals)
	assert.Equal(t, "Ana", o.GuestContact.Name)
	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(1), o.Items[0].ProductID)
	assert.Equal(t, int64(10), o.Items[0].VariantID)
	require.NotNil(t, o.Items[0].SizeID)
	assert.Equal(t, int64(100), *o.Items[0].SizeID)
	assert.Equal(t, 2, o.Items[0].Qty)
	assert.Nil(t, o.Items[1].SizeID)

	_, ok := carts.items(cartID)
	assert.False(t, ok, "server cart should be emptied after the order")

	require.Equal(t, []string{analytics.Purchase}, tracker.names())
	assert.Equal(t, body["number"], tracker.events[0].Ecommerce.TransactionID)
	assert.Equal(t, int64(11500), tracker.events[0].Ecommerce.Value)
}

func TestPlaceOrderRetriesNumberCollisions(t *testing.T) {
	orders := &fakeOrders{conflicts: 2}
	h := newTestCheckout(orders, newMemCarts(), &recordingTracker{})

	rr := serve(h.PlaceOrder, jsonRequest(t, http.MethodPost, "/checkout/place-order", validCheckoutBody()))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Len(t, orders.numbers, 3)
}

func TestPlaceOrderGivesUpAfterRepeatedCollisions(t *testing.T) {
	orders := &fakeOrders{conflicts: numberAttempts}
	tracker := &recordingTracker{}
	h := newTestCheckout(orders, newMemCarts(), tracker)

	rr := serve(h.PlaceOrder, jsonRequest(t, http.MethodPost, "/checkout/place-order", validCheckoutBody()))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Len(t, orders.numbers, numberAttempts)
	assert.Empty(t, tracker.events)
}

func TestPlaceOrderStoreFailure(t *testing.T) {
	orders := &fakeOrders{err: apperr.Unavailable("create order", errors.New("connection refused"))}
	h := newTestCheckout(orders, newMemCarts(), &recordingTracker{})

	rr := serve(h.PlaceOrder, jsonRequest(t, http.MethodPost, "/checkout/place-order", validCheckoutBody()))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "create order: connection refused", errorMessage(t, rr))
	assert.Len(t, orders.numbers, 1, "only collisions are retried")
}

func TestPlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b map[string]any)
		message string
	}{
		{"empty cart", func(b map[string]any) { b["items"] = []any{} }, "Cart is empty"},
		{"missing phone", func(b map[string]any) { b["contact"] = map[string]any{"name": "Ana"} }, "Name and phone are required"},
		{"blank name", func(b map[string]any) { b["contact"] = map[string]any{"name": "  ", "phone": "1"} }, "Name and phone are required"},
		{"fractional total", func(b map[string]any) { b["totals"] = map[string]any{"total": 10.5} }, "Invalid totals.total"},
		{"negative total", func(b map[string]any) { b["totals"] = map[string]any{"total": -1} }, "Invalid totals.total"},
		{"foreign currency", func(b map[string]any) { b["totals"] = map[string]any{"total": 1, "currency": "EUR"} }, "Unsupported currency"},
		{"bad product id", func(b map[string]any) { b["items"] = []map[string]any{{"id": "x:10", "price": 1, "qty": 1}} }, "Invalid product id"},
		{"missing variant", func(b map[string]any) { b["items"] = []map[string]any{{"id": "1", "price": 1, "qty": 1}} }, "Invalid variant id"},
		{"bad size id", func(b map[string]any) { b["items"] = []map[string]any{{"id": "1:10:0", "price": 1, "qty": 1}} }, "Invalid size id"},
		{"zero qty", func(b map[string]any) { b["items"] = []map[string]any{{"id": "1:10", "price": 1, "qty": 0}} }, "Invalid qty"},
		{"negative price", func(b map[string]any) { b["items"] = []map[string]any{{"id": "1:10", "price": -5, "qty": 1}} }, "Invalid price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &fakeOrders{}
			h := newTestCheckout(orders, newMemCarts(), &recordingTracker{})
			body := validCheckoutBody()
			tt.mutate(body)

			rr := serve(h.PlaceOrder, jsonRequest(t, http.MethodPost, "/checkout/place-order", body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, errorMessage(t, rr))
			assert.Empty(t, orders.numbers)
		})
	}
}

func TestPlaceOrderDefaultsCurrency(t *testing.T) {
	orders := &fakeOrders{}
	h := newTestCheckout(orders, newMemCarts(), &recordingTracker{})
	body := validCheckoutBody()
	body["totals"] = map[string]any{"total": 11500}

	rr := serve(h.PlaceOrder, jsonRequest(t, http.MethodPost, "/checkout/place-order", body))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "AOA", orders.created.Totals.Currency)
}
