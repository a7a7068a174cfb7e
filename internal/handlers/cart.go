// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/analytics"
	"storefront/internal/apperr"
	"storefront/internal/cart"
	"storefront/internal/models"
)

// ProductFinder loads a product with all of its variants.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// Cart groups the shopper cart handlers. Carts are keyed by the cart
// cookie and persisted best-effort: a failed save is logged and the
// response still reflects the mutation.
type Cart struct {
	carts    cart.Store
	products ProductFinder
	tracker  analytics.Tracker
	secure   bool
}

// NewCart creates a new Cart handler group. A nil tracker discards
// analytics events.
func NewCart(carts cart.Store, products ProductFinder, tracker analytics.Tracker, secure bool) *Cart {
	if tracker == nil {
		tracker = analytics.Discard{}
	}
	return &Cart{carts: carts, products: products, tracker: tracker, secure: secure}
}

// cartView is the JSON shape of a cart.
type cartView struct {
	Items    []cart.Item `json:"items"`
	Count    int         `json:"count"`
	Total    int64       `json:"total"`
	Currency string      `json:"currency"`
}

func viewOf(c *cart.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{Items: items, Count: c.Count(), Total: c.Total(), Currency: analytics.Currency}
}

// load returns the request's cart, issuing a cart cookie when missing.
// Analytics are attached after loading so restoring a cart emits nothing.
func (h *Cart) load(w http.ResponseWriter, r *http.Request) (string, *cart.Cart) {
	id := cart.EnsureID(w, r, h.secure)
	c, err := h.carts.Load(r.Context(), id)
	if err != nil {
		slog.Warn("cart load failed, starting empty", "cart_id", id, "error", err)
		c = cart.New()
	}
	c.OnChange(analytics.CartListener(r.Context(), h.tracker))
	return id, c
}

// save persists c. Failures are logged, never returned.
func (h *Cart) save(ctx context.Context, id string, c *cart.Cart) {
	if err := h.carts.Save(ctx, id, c); err != nil {
		slog.Warn("cart save failed", "cart_id", id, "error", err)
	}
}

// Get serves GET /cart.
func (h *Cart) Get(w http.ResponseWriter, r *http.Request) {
	id := cart.ID(r)
	if id == "" {
		writeJSON(w, http.StatusOK, viewOf(cart.New()))
		return
	}
	c, err := h.carts.Load(r.Context(), id)
	if err != nil {
		slog.Warn("cart load failed", "cart_id", id, "error", err)
		c = cart.New()
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// addRequest is the body of POST /cart/items.
type addRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	SizeID    *int64 `json:"size_id"`
	Qty       int    `json:"qty"`
}

// resolve loads the active product, variant and size a cart line refers to.
func (h *Cart) resolve(ctx context.Context, req addRequest) (*models.Product, *models.Variant, *models.VariantSize, error) {
	if req.ProductID <= 0 || req.VariantID <= 0 {
		return nil, nil, nil, apperr.InvalidArgument("product_id and variant_id required")
	}
	p, err := h.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !p.Active {
		return nil, nil, nil, apperr.NotFound("Product not found")
	}

	var v *models.Variant
	for i := range p.Variants {
		if p.Variants[i].ID == req.VariantID && p.Variants[i].Active {
			v = &p.Variants[i]
			break
		}
	}
	if v == nil {
		return nil, nil, nil, apperr.NotFound("Variant not found")
	}
	if req.SizeID == nil {
		return p, v, nil, nil
	}
	for i := range v.Sizes {
		if v.Sizes[i].ID == *req.SizeID {
			return p, v, &v.Sizes[i], nil
		}
	}
	return nil, nil, nil, apperr.NotFound("Size not found")
}

// Add serves POST /cart/items.
func (h *Cart) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, v, size, err := h.resolve(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, c := h.load(w, r)
	if _, err := c.Add(p, v, size, req.Qty); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(r.Context(), id, c)
	writeJSON(w, http.StatusOK, viewOf(c))
}

// lineKey reads and validates the {key} URL parameter.
func lineKey(r *http.Request) (string, error) {
	k, err := cart.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

// Update serves PATCH /cart/items/{key} with body {"qty": n}.
func (h *Cart) Update(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Qty int `json:"qty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Qty < 1 || req.Qty > maxItemQty {
		writeError(w, r, apperr.InvalidArgument("Invalid qty"))
		return
	}

	id, c := h.load(w, r)
	if !c.SetQty(key, req.Qty) {
		writeError(w, r, apperr.NotFound("Cart item not found"))
		return
	}
	h.save(r.Context(), id, c)
	writeJSON(w, http.StatusOK, viewOf(c))
}

// Remove serves DELETE /cart/items/{key}.
func (h *Cart) Remove(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, c := h.load(w, r)
	if !c.Remove(key) {
		writeError(w, r, apperr.NotFound("Cart item not found"))
		return
	}
	h.save(r.Context(), id, c)
	writeJSON(w, http.StatusOK, viewOf(c))
}

// Clear serves DELETE /cart.
func (h *Cart) Clear(w http.ResponseWriter, r *http.Request) {
	id := cart.ID(r)
	if id == "" {
		writeJSON(w, http.StatusOK, viewOf(cart.New()))
		return
	}
	_, c := h.load(w, r)
	c.Clear()
	if err := h.carts.Delete(r.Context(), id); err != nil {
		slog.Warn("cart delete failed", "cart_id", id, "error", err)
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// BeginCheckout serves POST /checkout/begin: it records the begin_checkout
// event for the current cart and returns it.
func (h *Cart) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	_, c := h.load(w, r)
	if c.IsEmpty() {
		writeError(w, r, apperr.InvalidArgument("Cart is empty"))
		return
	}
	h.tracker.Track(r.Context(), analytics.BeginCheckoutEvent(c))
	writeJSON(w, http.StatusOK, viewOf(c))
}
